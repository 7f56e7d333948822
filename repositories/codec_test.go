package repositories

import (
	"bate-papo/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func Test_Unmarshal_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	at := time.Unix(0, 1714564800123456789).UTC()
	b := marshalParticipant(domain.Participant{Name: "ana", LastSeen: at})
	// A field written by a newer version
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendString(b, "avatar.png")

	p, err := unmarshalParticipant(b)

	req.NoError(err)
	req.Equal("ana", p.Name)
	req.True(p.LastSeen.Equal(at))
}

func Test_Unmarshal_Truncated_Record(t *testing.T) {
	req := require.New(t)
	b := marshalMessage(DiskMessage{
		Message: domain.Message{ID: uuid.New(), From: "ana", To: domain.Broadcast, Text: "oi", Type: domain.ChatMessage, Time: "10:00:00"},
		Seq:     3,
	})

	_, err := unmarshalMessage(b[:len(b)-4])

	req.Error(err)
}
