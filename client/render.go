package main

import (
	"bate-papo/domain"
	"bate-papo/infrastructure/rest"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
)

// parseLine turns a typed line into a post.
// "@bob oi" is private to bob, anything else goes to everyone.
func parseLine(line string) (to, text string, messageType domain.MessageType, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", "", false
	}
	if strings.HasPrefix(line, "@") {
		target, body, found := strings.Cut(line[1:], " ")
		body = strings.TrimSpace(body)
		if !found || target == "" || body == "" {
			return "", "", "", false
		}
		return target, body, domain.PrivateMessage, true
	}
	return domain.Broadcast, line, domain.ChatMessage, true
}

// printer writes each message once, in log order.
// The server always returns the visible log from the start, so the ids
// already printed are remembered.
type printer struct {
	out     io.Writer
	viewer  string
	colours bool
	seen    map[string]struct{}
}

func newPrinter(out io.Writer, viewer string, colours bool) *printer {
	return &printer{out: out, viewer: viewer, colours: colours, seen: make(map[string]struct{})}
}

func (p *printer) PrintNew(messages []rest.MessageResponse) {
	for _, m := range messages {
		if _, ok := p.seen[m.ID]; ok {
			continue
		}
		p.seen[m.ID] = struct{}{}
		fmt.Fprintln(p.out, p.format(m))
	}
}

func (p *printer) format(m rest.MessageResponse) string {
	clock := fmt.Sprintf("(%s)", m.Time)
	switch domain.MessageType(m.Type) {
	case domain.StatusNotice:
		return p.paint(color.New(color.FgGray), fmt.Sprintf("%s %s %s", clock, m.From, m.Text))
	case domain.PrivateMessage:
		line := fmt.Sprintf("%s %s reservadamente para %s: %s", clock, m.From, m.To, m.Text)
		return p.paint(color.New(color.FgMagenta), line)
	default:
		line := fmt.Sprintf("%s %s para %s: %s", clock, m.From, m.To, m.Text)
		if m.From == p.viewer {
			return p.paint(color.New(color.FgGreen), line)
		}
		return line
	}
}

func (p *printer) paint(style color.Style, line string) string {
	if !p.colours {
		return line
	}
	return style.Render(line)
}
