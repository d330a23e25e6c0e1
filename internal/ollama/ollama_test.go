// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/portal-tui/internal/model"
)

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: "http://host:1/"})

	if c.config.BaseURL != "http://host:1" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", c.config.BaseURL)
	}
	if c.Model() != "llama3.2" {
		t.Errorf("Model() = %q", c.Model())
	}
	if c.config.Timeout != 120*time.Second {
		t.Errorf("Timeout = %v", c.config.Timeout)
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("tech")
	if !strings.Contains(p, "Tech Support Assistant") {
		t.Errorf("prompt = %q, want assistant name", p)
	}
	if got := SystemPrompt("nope"); !strings.Contains(got, "helpful workplace assistant") {
		t.Errorf("unknown assistant prompt = %q", got)
	}
}

func TestReply(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(ChatResponse{
			Model:   got.Model,
			Message: Message{Role: "assistant", Content: "Try restarting the router."},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, DefaultModel: "tiny"})
	reply, err := c.Reply(context.Background(), "tech", []model.Message{
		{Role: model.RoleUser, Content: "wifi is down"},
	})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply != "Try restarting the router." {
		t.Errorf("reply = %q", reply)
	}
	if got.Model != "tiny" || got.Stream {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "wifi is down" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		substr string
	}{
		{"model missing", http.StatusNotFound, `{"error":"model 'x' not found"}`, IsModelNotFound, ""},
		{"api error text", http.StatusInternalServerError, `{"error":"out of memory"}`, nil, "out of memory"},
		{"plain failure", http.StatusBadGateway, `bad`, nil, "chat request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).Chat(context.Background(), "", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.check != nil && !tt.check(err) {
				t.Errorf("unexpected error kind: %v", err)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("error = %q, want %q", err, tt.substr)
			}
		})
	}
}

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Ollama is running"))
	}))
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	if err := c.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning: %v", err)
	}

	srv.Close()
	if err := c.CheckRunning(context.Background()); !IsNotRunning(err) {
		t.Errorf("closed server: err = %v, want not running", err)
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"models":[{"name":"llama3.2","size":2019393189}]}`))
	}))
	defer srv.Close()

	models, err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 1 || models[0].Name != "llama3.2" {
		t.Errorf("models = %+v", models)
	}
}

func TestCheckModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3.2:latest"},{"name":"mistral:7b"}]}`))
	}))

	if err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, DefaultModel: "llama3.2"}).CheckModel(context.Background()); err != nil {
		t.Errorf("untagged name should match :latest: %v", err)
	}
	if err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, DefaultModel: "mistral:7b"}).CheckModel(context.Background()); err != nil {
		t.Errorf("tagged name: %v", err)
	}

	err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, DefaultModel: "qwen2.5"}).CheckModel(context.Background())
	if !IsModelNotFound(err) {
		t.Errorf("missing model: err = %v", err)
	}
	if !strings.Contains(err.Error(), "qwen2.5") {
		t.Errorf("error should name the model: %v", err)
	}

	srv.Close()
	if err := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL}).CheckModel(context.Background()); !IsNotRunning(err) {
		t.Errorf("closed server: err = %v, want not running", err)
	}
}

func TestCheckModel_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	err := c.CheckModel(context.Background())
	if !IsTimeout(err) {
		t.Errorf("err = %v, want timeout", err)
	}
	if IsNotRunning(err) || IsModelNotFound(err) {
		t.Errorf("timeout misclassified: %v", err)
	}
}

func TestChatResponse_Metrics(t *testing.T) {
	r := &ChatResponse{EvalCount: 50, EvalDuration: int64(2 * time.Second), TotalDuration: int64(3 * time.Second)}
	if tps := r.TokensPerSecond(); tps != 25 {
		t.Errorf("TokensPerSecond = %v", tps)
	}
	if r.TotalTime() != 3*time.Second {
		t.Errorf("TotalTime = %v", r.TotalTime())
	}
	if (&ChatResponse{}).TokensPerSecond() != 0 {
		t.Error("zero duration should give zero speed")
	}
}
