package domain

// IsVisible reports whether viewer may read message m.
// Broadcasts are public; anything else is limited to its sender and recipient.
func IsVisible(m Message, viewer string) bool {
	return m.To == Broadcast || m.To == viewer || m.From == viewer
}
