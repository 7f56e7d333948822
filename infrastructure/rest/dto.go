// Package rest holds the JSON bodies shared by the REST server and its client.
package rest

import (
	"bate-papo/domain"

	"github.com/samber/lo"
)

type JoinRequest struct {
	Name string `json:"name"`
}

type PostMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// ParticipantResponse exposes lastStatus as unix milliseconds.
type ParticipantResponse struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

type MessageResponse struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// ErrorResponse is the body echo writes for a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

func ToParticipantResponses(participants []domain.Participant) []ParticipantResponse {
	return lo.Map(participants, func(p domain.Participant, _ int) ParticipantResponse {
		return ParticipantResponse{Name: p.Name, LastStatus: p.LastSeen.UnixMilli()}
	})
}

func ToMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(m domain.Message, _ int) MessageResponse {
		return MessageResponse{
			ID:   m.ID.String(),
			From: m.From,
			To:   m.To,
			Text: m.Text,
			Type: string(m.Type),
			Time: m.Time,
		}
	})
}
