package chat

import "bate-papo/domain"

// JoinCommand asks for a name to be registered in the room.
type JoinCommand struct {
	Name string `validate:"required,min=3"`
}

// PostMessageCommand carries a message written by From.
// From is not validated here: an unknown or empty sender is an offline sender.
// Status notices are produced by the service only, never posted.
type PostMessageCommand struct {
	From string
	To   string             `validate:"required,min=1"`
	Text string             `validate:"required,min=1"`
	Type domain.MessageType `validate:"required,oneof=message private_message"`
}

// GetMessageCommand lists what Viewer is allowed to read.
// A nil Limit scans the whole log.
type GetMessageCommand struct {
	Viewer string
	Limit  *int `validate:"omitempty,gt=0"`
}

type DeleteMessageCommand struct {
	MessageID string
	Requester string
}
