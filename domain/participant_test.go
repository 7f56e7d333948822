package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParticipant_IsInactive(t *testing.T) {
	req := require.New(t)
	seen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Participant{Name: "ana", LastSeen: seen}
	threshold := 10 * time.Second

	req.False(p.IsInactive(seen.Add(5*time.Second), threshold))
	req.False(p.IsInactive(seen.Add(threshold), threshold))
	req.True(p.IsInactive(seen.Add(threshold+time.Millisecond), threshold))
}

func TestNewStatusNotice(t *testing.T) {
	req := require.New(t)
	at := time.Date(2024, 5, 1, 9, 3, 7, 0, time.Local)

	notice := NewStatusNotice("ana", LeaveNotice, at)

	req.Equal("ana", notice.From)
	req.Equal(Broadcast, notice.To)
	req.Equal(StatusNotice, notice.Type)
	req.Equal("sai da sala...", notice.Text)
	req.Equal("09:03:07", notice.Time)
}
