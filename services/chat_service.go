//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"bate-papo/domain"
	"bate-papo/domain/chat"
	"bate-papo/errors"
	"bate-papo/repositories"
	"context"
	goerrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const DefaultInactivityThreshold = 10 * time.Second

type IChatService interface {
	Join(cmd chat.JoinCommand) (domain.Participant, error)
	Heartbeat(name string) error
	ListParticipants() ([]domain.Participant, error)
	PostMessage(cmd chat.PostMessageCommand) (domain.Message, error)
	GetMessages(cmd chat.GetMessageCommand) ([]domain.Message, error)
	DeleteMessage(cmd chat.DeleteMessageCommand) error
	RunExpirySweep(ctx context.Context, now time.Time) []string
}

// ChatService drives the participant lifecycle (Absent -> Online -> Absent)
// and the message log. There is no logout: a participant only leaves
// when the expiry sweep finds it inactive.
type ChatService struct {
	log          *slog.Logger
	participants repositories.IParticipantRepository
	messages     repositories.IMessageRepository
	threshold    time.Duration
	now          func() time.Time
}

type Option func(*ChatService)

func WithInactivityThreshold(d time.Duration) Option {
	return func(s *ChatService) {
		s.threshold = d
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ChatService) {
		s.now = now
	}
}

func NewChatService(
	log *slog.Logger,
	participants repositories.IParticipantRepository,
	messages repositories.IMessageRepository,
	opts ...Option,
) *ChatService {
	s := &ChatService{
		log:          log,
		participants: participants,
		messages:     messages,
		threshold:    DefaultInactivityThreshold,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join registers the participant and announces it to the room.
// Registry and log are two separate writes: if the notice cannot be stored
// the registration is undone so that the caller can simply retry.
func (s *ChatService) Join(cmd chat.JoinCommand) (domain.Participant, error) {
	if err := validateJoin(cmd); err != nil {
		return domain.Participant{}, err
	}

	now := s.now()
	participant := domain.Participant{Name: cmd.Name, LastSeen: now}
	if err := s.participants.Create(participant); err != nil {
		return domain.Participant{}, err
	}

	if _, err := s.messages.StoreMessage(domain.NewStatusNotice(cmd.Name, domain.JoinNotice, now)); err != nil {
		s.log.Error("Join notice not stored, rolling back participant", "name", cmd.Name, "error", err)
		if rollbackErr := s.participants.Delete(cmd.Name); rollbackErr != nil {
			s.log.Error("Rollback failed, participant is online without a join notice",
				"name", cmd.Name, "error", rollbackErr)
		}
		return domain.Participant{}, err
	}

	s.log.Info("Participant joined", "name", cmd.Name)
	return participant, nil
}

// Heartbeat keeps an online participant alive. It never registers anyone.
func (s *ChatService) Heartbeat(name string) error {
	if _, err := s.participants.Touch(name, s.now()); err != nil {
		return err
	}
	s.log.Debug("Heartbeat", "name", name)
	return nil
}

func (s *ChatService) ListParticipants() ([]domain.Participant, error) {
	return s.participants.List()
}

// PostMessage appends a chat or private message written by an online participant.
// Input is checked before the registry is read, so a rejected post has no side effect.
func (s *ChatService) PostMessage(cmd chat.PostMessageCommand) (domain.Message, error) {
	if err := validatePost(cmd); err != nil {
		return domain.Message{}, err
	}

	if _, err := s.participants.Get(cmd.From); err != nil {
		if goerrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, errors.ErrSenderOffline
		}
		return domain.Message{}, err
	}

	return s.messages.StoreMessage(domain.Message{
		From: cmd.From,
		To:   cmd.To,
		Text: cmd.Text,
		Type: cmd.Type,
		Time: domain.FormatClock(s.now()),
	})
}

func (s *ChatService) GetMessages(cmd chat.GetMessageCommand) ([]domain.Message, error) {
	if err := validateGet(cmd); err != nil {
		return nil, err
	}
	return s.messages.ListVisible(cmd.Viewer, cmd.Limit)
}

// DeleteMessage removes a message on behalf of its sender.
// An id that cannot be parsed cannot match any message.
func (s *ChatService) DeleteMessage(cmd chat.DeleteMessageCommand) error {
	id, err := uuid.Parse(cmd.MessageID)
	if err != nil {
		return errors.ErrMessageNotFound
	}
	if err := s.messages.DeleteOwned(id, cmd.Requester); err != nil {
		return err
	}
	s.log.Info("Message deleted", "id", id, "requester", cmd.Requester)
	return nil
}

// RunExpirySweep evicts every participant inactive for longer than the threshold
// and announces each departure. It is best effort: a failure on one participant
// is logged and the sweep moves on. It returns the evicted names.
func (s *ChatService) RunExpirySweep(ctx context.Context, now time.Time) []string {
	participants, err := s.participants.List()
	if err != nil {
		s.log.Error("Sweep skipped, cannot list participants", "error", err)
		return nil
	}

	candidates := lo.Filter(participants, func(p domain.Participant, _ int) bool {
		return p.IsInactive(now, s.threshold)
	})

	var expired []string
	for _, p := range candidates {
		if ctx.Err() != nil {
			s.log.Info("Sweep interrupted", "evicted", len(expired))
			break
		}
		deleted, err := s.participants.DeleteIfInactive(p.Name, now, s.threshold)
		if goerrors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			s.log.Error("Failed to evict participant", "name", p.Name, "error", err)
			continue
		}
		if !deleted {
			// A heartbeat or a previous eviction got there first
			s.log.Debug("Participant no longer eligible for eviction", "name", p.Name)
			continue
		}
		expired = append(expired, p.Name)
		if _, err := s.messages.StoreMessage(domain.NewStatusNotice(p.Name, domain.LeaveNotice, now)); err != nil {
			s.log.Error("Failed to store leave notice", "name", p.Name, "error", err)
		}
	}

	if len(expired) > 0 {
		s.log.Info("Evicted inactive participants", "count", len(expired), "names", expired)
	}
	return expired
}
