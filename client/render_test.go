package main

import (
	"bate-papo/domain"
	"bate-papo/infrastructure/rest"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line        string
		to          string
		text        string
		messageType domain.MessageType
		ok          bool
	}{
		{"oi pessoal", domain.Broadcast, "oi pessoal", domain.ChatMessage, true},
		{"@bob tudo bem?", "bob", "tudo bem?", domain.PrivateMessage, true},
		{"  @bob   oi  ", "bob", "oi", domain.PrivateMessage, true},
		{"@bob", "", "", "", false},
		{"@ oi", "", "", "", false},
		{"   ", "", "", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.line, func(t *testing.T) {
			req := require.New(t)
			to, text, messageType, ok := parseLine(tc.line)
			req.Equal(tc.ok, ok)
			req.Equal(tc.to, to)
			req.Equal(tc.text, text)
			req.Equal(tc.messageType, messageType)
		})
	}
}

func TestPrinter_Prints_Each_Message_Once(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer
	p := newPrinter(&out, "bob", false)

	first := []rest.MessageResponse{
		{ID: "1", From: "ana", To: "Todos", Text: "entra na sala...", Type: "status", Time: "14:30:00"},
		{ID: "2", From: "ana", To: "Todos", Text: "oi", Type: "message", Time: "14:30:01"},
	}
	p.PrintNew(first)
	p.PrintNew(append(first, rest.MessageResponse{
		ID: "3", From: "ana", To: "bob", Text: "segredo", Type: "private_message", Time: "14:30:02",
	}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	req.Equal([]string{
		"(14:30:00) ana entra na sala...",
		"(14:30:01) ana para Todos: oi",
		"(14:30:02) ana reservadamente para bob: segredo",
	}, lines)
}
