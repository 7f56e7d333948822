package client

import (
	"bate-papo/domain"
	"bate-papo/infrastructure/rest"
	"bate-papo/infrastructure/rest/server"
	"bate-papo/repositories"
	"bate-papo/services"
	"context"
	goerrors "errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// newTestServer runs the whole stack on a temporary badger store.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	messages := repositories.NewMessageRepository(db, log)
	t.Cleanup(func() { _ = messages.Close() })
	service := services.NewChatService(log, repositories.NewParticipantRepository(db), messages)

	ts := httptest.NewServer(server.NewChatServer(log, service).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func statusCode(err error) int {
	var statusErr *StatusError
	if goerrors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}

func TestChatClient_Conversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ts := newTestServer(t)

	ana := NewChatClient(ts.URL, "ana")
	bob := NewChatClient(ts.URL, "bob")
	carol := NewChatClient(ts.URL, "carol")
	for _, c := range []*ChatClient{ana, bob, carol} {
		req.NoError(c.Join(ctx))
	}

	req.NoError(ana.Post(ctx, domain.Broadcast, "oi", domain.ChatMessage))
	req.NoError(ana.Post(ctx, "bob", "segredo", domain.PrivateMessage))

	carolView, err := carol.Messages(ctx, nil)
	req.NoError(err)
	req.NotContains(lo.Map(carolView, func(m rest.MessageResponse, _ int) string { return m.Text }), "segredo")

	bobView, err := bob.Messages(ctx, nil)
	req.NoError(err)
	req.Contains(lo.Map(bobView, func(m rest.MessageResponse, _ int) string { return m.Text }), "segredo")

	participants, err := ana.Participants(ctx)
	req.NoError(err)
	req.Len(participants, 3)
}

func TestChatClient_Status_Codes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ts := newTestServer(t)

	ana := NewChatClient(ts.URL, "ana")
	req.NoError(ana.Join(ctx))

	req.Equal(http.StatusConflict, statusCode(ana.Join(ctx)))
	req.Equal(http.StatusUnprocessableEntity, statusCode(NewChatClient(ts.URL, "al").Join(ctx)))
	req.Equal(http.StatusNotFound, statusCode(NewChatClient(ts.URL, "ghost").Heartbeat(ctx)))
	req.Equal(http.StatusUnprocessableEntity,
		statusCode(NewChatClient(ts.URL, "ghost").Post(ctx, domain.Broadcast, "oi", domain.ChatMessage)))
	req.Equal(http.StatusUnprocessableEntity, statusCode(func() error {
		_, err := ana.Messages(ctx, lo.ToPtr(0))
		return err
	}()))
	req.NoError(ana.Heartbeat(ctx))
}

func TestChatClient_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ts := newTestServer(t)

	ana := NewChatClient(ts.URL, "ana")
	bob := NewChatClient(ts.URL, "bob")
	req.NoError(ana.Join(ctx))
	req.NoError(bob.Join(ctx))
	req.NoError(ana.Post(ctx, domain.Broadcast, "apagar", domain.ChatMessage))

	messages, err := ana.Messages(ctx, nil)
	req.NoError(err)
	posted, found := lo.Find(messages, func(m rest.MessageResponse) bool { return m.Text == "apagar" })
	req.True(found)

	req.Equal(http.StatusUnauthorized, statusCode(bob.Delete(ctx, posted.ID)))
	req.NoError(ana.Delete(ctx, posted.ID))
	req.Equal(http.StatusNotFound, statusCode(ana.Delete(ctx, posted.ID)))
	req.Equal(http.StatusNotFound, statusCode(ana.Delete(ctx, "not-a-uuid")))
}
