// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package portal

import "github.com/jeranaias/portal-tui/internal/model"

// WireMessage is a transcript entry as sent to the backend.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIRequest is the body of POST /api/ai/{assistant}.
type AIRequest struct {
	Messages []WireMessage `json:"messages"`
}

// AIResponse is the reply body. Response is nil when the field is absent.
type AIResponse struct {
	Response *string `json:"response"`
}

// ToWire strips local-only fields from a transcript.
func ToWire(msgs []model.Message) []WireMessage {
	out := make([]WireMessage, len(msgs))
	for i, m := range msgs {
		out[i] = WireMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// User is the identity triple the backend returns.
type User struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// AuthResponse is returned by login and register.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	User User `json:"user"`
}

// ChatsResponse is returned by GET /api/chats.
type ChatsResponse struct {
	Chats []model.ChatRecord `json:"chats"`
}

// ChatResponse is returned by GET /api/chats/{id}.
type ChatResponse struct {
	Chat model.ChatRecord `json:"chat"`
}

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the error body written by the backend.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
