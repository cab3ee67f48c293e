// Package domain contains core concepts of the chat system.
// This file defines User entities as seen by the core.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is a registered account. The realtime core only ever references
// users by ID and username; the remaining fields exist for the account
// surface (registration, login, roster listing).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// Identity is the verified (id, username) pair bound to a connection
// for its whole lifetime. It is produced by token verification and
// never mutated afterwards.
type Identity struct {
	ID       string
	Username string
}

// RosterEntry is one line of the full presence roster: every known user
// joined with their current online flag.
type RosterEntry struct {
	ID       string
	Username string
	Email    string
	IsOnline bool
}
