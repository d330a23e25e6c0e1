// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"time"
	"unicode"

	"github.com/jeranaias/portal-tui/internal/portal"
)

// Sign-in methods shown on the settings screen.
const (
	MethodPassword = "Email & Password"
	MethodRestored = "Saved session"
)

// Identity is the signed-in user.
type Identity struct {
	Name       string
	Email      string
	Department string
	Token      string

	// SignedInAt is when this process established the identity.
	SignedInAt time.Time
	// Method describes how the identity was established.
	Method string
}

func identityFrom(u portal.User, token, method string) Identity {
	return Identity{
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Token:      token,
		SignedInAt: time.Now(),
		Method:     method,
	}
}

// Initials returns up to two upper-case initials for an avatar.
func (id Identity) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(id.Name) {
		r := []rune(part)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() >= 2 {
			break
		}
	}
	if b.Len() == 0 && id.Email != "" {
		return strings.ToUpper(string([]rune(id.Email)[0]))
	}
	return b.String()
}

// DisplayName returns the name, falling back to the email.
func (id Identity) DisplayName() string {
	if strings.TrimSpace(id.Name) != "" {
		return id.Name
	}
	return id.Email
}

// Welcome returns the dashboard greeting.
func (id Identity) Welcome() string {
	if id.Department == "" {
		return "Welcome, " + id.DisplayName()
	}
	return "Welcome, " + id.DisplayName() + " from " + id.Department
}
