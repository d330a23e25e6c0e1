// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/portal"
	"github.com/jeranaias/portal-tui/internal/storage"
)

// ============================================================================
// STATUS
// ============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, portal.StatusResponse{
		Status:  "Backend is running",
		Message: "Welcome to the AI Platform API!",
	})
}

// ============================================================================
// AUTH
// ============================================================================

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req portal.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Department) == "" {
		writeError(w, http.StatusUnprocessableEntity, "email, password, name and department are required")
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		s.log.Error("hash password failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	u := &storage.User{
		Email:        req.Email,
		Name:         strings.TrimSpace(req.Name),
		Department:   strings.TrimSpace(req.Department),
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			writeError(w, http.StatusBadRequest, "User already exists")
			return
		}
		s.log.Error("create user failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Info("user registered", "email", u.Email, "department", u.Department)
	s.respondWithToken(w, portal.User{Email: u.Email, Name: u.Name, Department: u.Department})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req portal.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	u, err := s.store.UserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		s.log.Error("lookup user failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if u == nil || !CheckPassword(u.PasswordHash, req.Password) {
		s.log.Info("login failed", "email", req.Email, "ip", GetClientIP(r))
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	s.respondWithToken(w, portal.User{Email: u.Email, Name: u.Name, Department: u.Department})
}

func (s *Server) respondWithToken(w http.ResponseWriter, u portal.User) {
	token, err := s.tokens.Issue(u)
	if err != nil {
		s.log.Error("sign token failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, portal.AuthResponse{Token: token, User: u})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	writeJSON(w, http.StatusOK, portal.MeResponse{User: claims.User()})
}

// ============================================================================
// AI
// ============================================================================

func (s *Server) handleAI(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())
	assistantID := r.PathValue("assistant")

	var req portal.AIRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if len(req.Messages) > MaxMessageCount {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("too many messages (max %d)", MaxMessageCount))
		return
	}

	transcript := make([]model.Message, 0, len(req.Messages)+1)
	for _, m := range req.Messages {
		transcript = append(transcript, model.Message{Role: model.Role(m.Role), Content: m.Content})
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.replyTimeout)
	defer cancel()

	reply, err := s.replier.Reply(ctx, assistantID, transcript)
	if err != nil {
		s.log.Error("reply failed", "assistant", assistantID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	transcript = append(transcript, model.Message{Role: model.RoleAssistant, Content: reply})
	now := s.now()
	rec := &model.ChatRecord{
		ID:            fmt.Sprintf("%s_%d", assistantID, now.UnixNano()),
		AssistantID:   assistantID,
		AssistantName: catalog.NameOf(assistantID),
		Timestamp:     now,
		Preview:       model.PreviewOf(transcript),
		Messages:      transcript,
		UserEmail:     claims.Email,
		UserName:      claims.Name,
	}
	if err := s.store.SaveChat(r.Context(), rec); err != nil {
		s.log.Error("save chat failed", "id", rec.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Debug("chat saved", "id", rec.ID, "messages", len(transcript))
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}

// ============================================================================
// CHATS
// ============================================================================

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	chats, err := s.store.ChatsForUser(r.Context(), claims.Email)
	if err != nil {
		s.log.Error("list chats failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, portal.ChatsResponse{Chats: chats})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	claims, _ := ClaimsFrom(r.Context())

	rec, err := s.store.ChatForUser(r.Context(), r.PathValue("id"), claims.Email)
	if errors.Is(err, storage.ErrChatNotFound) {
		writeError(w, http.StatusNotFound, "Chat not found")
		return
	}
	if err != nil {
		s.log.Error("get chat failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, portal.ChatResponse{Chat: *rec})
}
