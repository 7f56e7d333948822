package repositories

import (
	"bate-papo/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored with the protobuf wire format so the values stay
// compact and readable by any proto decoder.
//
//	participant: 1 name, 2 last_seen (unix nanos)
//	message:     1 id, 2 from, 3 to, 4 text, 5 type, 6 time, 7 seq
const (
	fieldParticipantName     protowire.Number = 1
	fieldParticipantLastSeen protowire.Number = 2

	fieldMessageID   protowire.Number = 1
	fieldMessageFrom protowire.Number = 2
	fieldMessageTo   protowire.Number = 3
	fieldMessageText protowire.Number = 4
	fieldMessageType protowire.Number = 5
	fieldMessageTime protowire.Number = 6
	fieldMessageSeq  protowire.Number = 7
)

// DiskMessage is a message as it sits in the log, with its position.
type DiskMessage struct {
	domain.Message
	Seq uint64
}

func marshalParticipant(p domain.Participant) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldParticipantName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name)
	b = protowire.AppendTag(b, fieldParticipantLastSeen, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.LastSeen.UnixNano()))
	return b
}

func unmarshalParticipant(b []byte) (domain.Participant, error) {
	var p domain.Participant
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		switch {
		case num == fieldParticipantName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			p.Name = v
			return n
		case num == fieldParticipantLastSeen && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			p.LastSeen = time.Unix(0, int64(v)).UTC()
			return n
		}
		return protowire.ConsumeFieldValue(num, typ, b)
	})
	return p, err
}

func marshalMessage(m DiskMessage) []byte {
	var b []byte
	b = appendStringField(b, fieldMessageID, m.ID.String())
	b = appendStringField(b, fieldMessageFrom, m.From)
	b = appendStringField(b, fieldMessageTo, m.To)
	b = appendStringField(b, fieldMessageText, m.Text)
	b = appendStringField(b, fieldMessageType, string(m.Type))
	b = appendStringField(b, fieldMessageTime, m.Time)
	b = protowire.AppendTag(b, fieldMessageSeq, protowire.VarintType)
	b = protowire.AppendVarint(b, m.Seq)
	return b
}

func unmarshalMessage(b []byte) (DiskMessage, error) {
	var m DiskMessage
	var rawID string
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) int {
		if num == fieldMessageSeq && typ == protowire.VarintType {
			v, n := protowire.ConsumeVarint(b)
			m.Seq = v
			return n
		}
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, b)
		}
		v, n := protowire.ConsumeString(b)
		switch num {
		case fieldMessageID:
			rawID = v
		case fieldMessageFrom:
			m.From = v
		case fieldMessageTo:
			m.To = v
		case fieldMessageText:
			m.Text = v
		case fieldMessageType:
			m.Type = domain.MessageType(v)
		case fieldMessageTime:
			m.Time = v
		}
		return n
	})
	if err != nil {
		return DiskMessage{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return DiskMessage{}, fmt.Errorf("decode message id: %w", err)
	}
	m.ID = id
	return m, nil
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// consumeFields walks every field of a record and hands its value bytes to fn,
// which returns how many bytes it consumed (negative on a malformed value).
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) int) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n = fn(num, typ, b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}
