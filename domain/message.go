// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once stored; deletion removes them entirely.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Broadcast is the recipient meaning "everyone in the room".
const Broadcast = "Todos"

// ClockLayout renders message times as HH:mm:ss on a 24h clock.
const ClockLayout = "15:04:05"

const (
	JoinNotice  = "entra na sala..."
	LeaveNotice = "sai da sala..."
)

type MessageType string

const (
	ChatMessage    MessageType = "message"
	PrivateMessage MessageType = "private_message"
	StatusNotice   MessageType = "status"
)

// Message represents an immutable chat event.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Text string
	Type MessageType
	Time string
}

// FormatClock formats t on the local clock.
func FormatClock(t time.Time) string {
	return t.Local().Format(ClockLayout)
}

// NewStatusNotice builds the broadcast system message emitted when name joins or leaves.
func NewStatusNotice(name, text string, at time.Time) Message {
	return Message{
		From: name,
		To:   Broadcast,
		Text: text,
		Type: StatusNotice,
		Time: FormatClock(at),
	}
}
