package server

import (
	"bate-papo/domain"
	"bate-papo/domain/chat"
	"bate-papo/errors"
	"bate-papo/infrastructure/rest"
	"bate-papo/mocks"
	"bate-papo/observability"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T) (*ChatServer, *mocks.MockIChatService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	service := mocks.NewMockIChatService(ctrl)
	return NewChatServer(logs.GetLoggerFromLevel(slog.LevelDebug), service), service
}

func serve(s *ChatServer, method, target, user, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestChatServer_Join(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().
		Join(chat.JoinCommand{Name: "ana"}).
		Return(domain.Participant{Name: "ana"}, nil)

	rec := serve(server, http.MethodPost, "/participants", "", `{"name":"ana"}`)
	req.Equal(http.StatusOK, rec.Code)
	req.Empty(rec.Body.String())
}

func TestChatServer_Join_Failures(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid name", errors.ErrInvalidName, http.StatusUnprocessableEntity},
		{"name taken", errors.ErrNameTaken, http.StatusConflict},
		{"storage", errors.Storage("create participant", fmt.Errorf("disk full")), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			server, service := newTestServer(t)
			service.EXPECT().Join(gomock.Any()).Return(domain.Participant{}, tc.err)

			rec := serve(server, http.MethodPost, "/participants", "", `{"name":"ana"}`)
			req.Equal(tc.expected, rec.Code)
		})
	}
}

func TestChatServer_Storage_Cause_Is_Not_Leaked(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().
		ListParticipants().
		Return(nil, errors.Storage("list participants", fmt.Errorf("vlog corrupted")))

	rec := serve(server, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusInternalServerError, rec.Code)
	req.NotContains(rec.Body.String(), "vlog corrupted")
}

func TestChatServer_ListParticipants(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	lastSeen := time.UnixMilli(1714573800123)
	service.EXPECT().
		ListParticipants().
		Return([]domain.Participant{{Name: "ana", LastSeen: lastSeen}}, nil)

	rec := serve(server, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusOK, rec.Code)

	var body []rest.ParticipantResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	req.Equal([]rest.ParticipantResponse{{Name: "ana", LastStatus: 1714573800123}}, body)
}

func TestChatServer_ListParticipants_Empty_Is_An_Array(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().ListParticipants().Return([]domain.Participant{}, nil)

	rec := serve(server, http.MethodGet, "/participants", "", "")
	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`[]`, rec.Body.String())
}

func TestChatServer_PostMessage(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	service.EXPECT().
		PostMessage(chat.PostMessageCommand{
			From: "ana",
			To:   "bob",
			Text: "oi",
			Type: domain.PrivateMessage,
		}).
		Return(domain.Message{}, nil)

	rec := serve(server, http.MethodPost, "/messages", "ana", `{"to":"bob","text":"oi","type":"private_message"}`)
	req.Equal(http.StatusCreated, rec.Code)
}

func TestChatServer_PostMessage_Offline_Sender_Is_422(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().PostMessage(gomock.Any()).Return(domain.Message{}, errors.ErrSenderOffline)

	rec := serve(server, http.MethodPost, "/messages", "ghost", `{"to":"Todos","text":"oi","type":"message"}`)
	req.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func TestChatServer_PostMessage_Malformed_Body_Is_422(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().PostMessage(gomock.Any()).Times(0)

	rec := serve(server, http.MethodPost, "/messages", "ana", `{"to":`)
	req.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func TestChatServer_GetMessages(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	id := uuid.New()

	service.EXPECT().
		GetMessages(chat.GetMessageCommand{Viewer: "bob", Limit: lo.ToPtr(2)}).
		Return([]domain.Message{{
			ID:   id,
			From: "ana",
			To:   domain.Broadcast,
			Text: "oi",
			Type: domain.ChatMessage,
			Time: "14:30:00",
		}}, nil)

	rec := serve(server, http.MethodGet, "/messages?limit=2", "bob", "")
	req.Equal(http.StatusOK, rec.Code)

	var body []rest.MessageResponse
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	req.Equal([]rest.MessageResponse{{
		ID:   id.String(),
		From: "ana",
		To:   "Todos",
		Text: "oi",
		Type: "message",
		Time: "14:30:00",
	}}, body)
}

func TestChatServer_GetMessages_Without_Limit(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().
		GetMessages(chat.GetMessageCommand{Viewer: "bob"}).
		Return([]domain.Message{}, nil)

	rec := serve(server, http.MethodGet, "/messages", "bob", "")
	req.Equal(http.StatusOK, rec.Code)
	req.JSONEq(`[]`, rec.Body.String())
}

func TestChatServer_GetMessages_Bad_Limit_Is_422(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)
	service.EXPECT().GetMessages(gomock.Any()).Times(0)

	rec := serve(server, http.MethodGet, "/messages?limit=abc", "bob", "")
	req.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func TestChatServer_Heartbeat(t *testing.T) {
	req := require.New(t)
	server, service := newTestServer(t)

	gomock.InOrder(
		service.EXPECT().Heartbeat("ana").Return(nil),
		service.EXPECT().Heartbeat("ghost").Return(errors.ErrParticipantNotFound),
	)

	req.Equal(http.StatusOK, serve(server, http.MethodPost, "/status", "ana", "").Code)
	req.Equal(http.StatusNotFound, serve(server, http.MethodPost, "/status", "ghost", "").Code)
}

func TestChatServer_DeleteMessage(t *testing.T) {
	id := uuid.NewString()
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"owner", nil, http.StatusOK},
		{"unknown message", errors.ErrMessageNotFound, http.StatusNotFound},
		{"not the owner", errors.ErrNotMessageOwner, http.StatusUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			server, service := newTestServer(t)
			service.EXPECT().
				DeleteMessage(chat.DeleteMessageCommand{MessageID: id, Requester: "ana"}).
				Return(tc.err)

			rec := serve(server, http.MethodDelete, "/messages/"+id, "ana", "")
			req.Equal(tc.expected, rec.Code)
		})
	}
}

func TestChatServer_Metrics(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	service := mocks.NewMockIChatService(ctrl)
	server := NewChatServer(slog.Default(), service, WithMetrics(observability.NewMetrics()))

	id := uuid.NewString()
	service.EXPECT().Join(gomock.Any()).Return(domain.Participant{}, errors.ErrNameTaken)
	service.EXPECT().DeleteMessage(gomock.Any()).Return(nil)

	serve(server, http.MethodPost, "/participants", "", `{"name":"ana"}`)
	serve(server, http.MethodDelete, "/messages/"+id, "ana", "")

	rec := serve(server, http.MethodGet, "/metrics", "", "")
	req.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	req.Contains(body, `bate_papo_http_requests_total{method="POST",route="/participants",status="409"} 1`)
	req.Contains(body, `bate_papo_http_requests_total{method="DELETE",route="/messages/:id",status="200"} 1`)
	req.NotContains(body, id)
}

func TestChatServer_No_Metrics_Route_By_Default(t *testing.T) {
	req := require.New(t)
	server, _ := newTestServer(t)

	rec := serve(server, http.MethodGet, "/metrics", "", "")
	req.Equal(http.StatusNotFound, rec.Code)
}
