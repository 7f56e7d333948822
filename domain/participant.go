// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// MinNameLength is the shortest display name a participant may register.
const MinNameLength = 3

// Participant is an online member of the room, identified by its name.
type Participant struct {
	Name     string
	LastSeen time.Time
}

// IsInactive reports whether the participant has not been seen for longer than threshold.
// Exactly threshold is still considered active.
func (p Participant) IsInactive(now time.Time, threshold time.Duration) bool {
	return now.Sub(p.LastSeen) > threshold
}
