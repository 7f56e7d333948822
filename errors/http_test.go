package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid name", ErrInvalidName, http.StatusUnprocessableEntity},
		{"wrapped invalid message", fmt.Errorf("post: %w", ErrInvalidMessage), http.StatusUnprocessableEntity},
		{"sender offline", ErrSenderOffline, http.StatusUnprocessableEntity},
		{"name taken", ErrNameTaken, http.StatusConflict},
		{"participant not found", ErrParticipantNotFound, http.StatusNotFound},
		{"message not found", ErrMessageNotFound, http.StatusNotFound},
		{"not owner", ErrNotMessageOwner, http.StatusUnauthorized},
		{"storage", Storage("store message", fmt.Errorf("disk full")), http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, MapToHTTPStatus(c.err))
		})
	}
}

func TestStorage_KeepsCause(t *testing.T) {
	req := require.New(t)
	cause := fmt.Errorf("disk full")
	err := Storage("store message", cause)
	req.ErrorIs(err, ErrStorage)
	req.ErrorIs(err, cause)
}
