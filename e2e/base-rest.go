package e2e

import (
	"bate-papo/infrastructure/rest/client"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseRestSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseRestSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerURL == "" {
		s.T().Skip("E2E_SERVER_URL is not set")
	}
}

// UniqueName keeps runs independent, the room outlives a test run.
func (s *BaseRestSuite) UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

// WithParticipant provides a client acting as name within a contextual test step
func (s *BaseRestSuite) WithParticipant(step, name string, fn func(ctx context.Context, chat *client.ChatClient)) {
	header := fmt.Sprintf("  ====== %s (%s) ======", step, name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	fn(ctx, client.NewChatClient(s.Config.ServerURL, name))
	s.T().Logf("%s done in %v", step, time.Since(start))
}
