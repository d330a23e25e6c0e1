// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/model"
	"github.com/jeranaias/portal-tui/internal/portal"
)

var _ Replier = (*portal.Client)(nil)

func staticReply(text string) Replier {
	return ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		return text, nil
	})
}

func TestOpen(t *testing.T) {
	s, err := Open("Contract", staticReply("x"))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "contract", s.AssistantID())
	assert.Equal(t, "Contract Analyzer", s.Assistant().Name)
	assert.Empty(t, s.Transcript(), "live sessions start empty")
	assert.False(t, s.Pending())
	assert.False(t, s.StartedAt().IsZero())

	_, err = Open("weather", staticReply("x"))
	assert.ErrorIs(t, err, catalog.ErrUnknownAssistant)

	_, err = Open("tech", nil)
	assert.Error(t, err)
}

func TestSend_AppendsUserThenAssistant(t *testing.T) {
	var seen []model.Message
	r := ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		assert.Equal(t, "tech", id)
		seen = tr
		return "Try restarting.", nil
	})
	s, err := Open("tech", r)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Send("My laptop is slow"))
	require.True(t, s.Send("Still slow"))

	tr := s.Transcript()
	require.Len(t, tr, 4)
	assert.Equal(t, model.RoleUser, tr[0].Role)
	assert.Equal(t, "My laptop is slow", tr[0].Content)
	assert.Equal(t, model.RoleAssistant, tr[1].Role)
	assert.Equal(t, "Try restarting.", tr[1].Content)
	assert.Equal(t, "Still slow", tr[2].Content)

	require.Len(t, seen, 3, "the call carries the transcript so far plus the new message")
	assert.Equal(t, "Still slow", seen[2].Content)
	assert.False(t, s.Pending())
}

func TestSubmit_RejectsBlankText(t *testing.T) {
	s, err := Open("social", staticReply("x"))
	require.NoError(t, err)
	defer s.Close()

	for _, text := range []string{"", "   ", "\n\t"} {
		turn, ok := s.Submit(text)
		assert.False(t, ok)
		assert.Nil(t, turn)
	}
	assert.Empty(t, s.Transcript())
	assert.False(t, s.Pending())
}

func TestSubmit_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	r := ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return "done", nil
	})
	s, err := Open("meeting", r)
	require.NoError(t, err)
	defer s.Close()

	turn, ok := s.Submit("first")
	require.True(t, ok)
	assert.True(t, s.Pending())
	assert.Len(t, s.Transcript(), 1, "user message is visible before the reply")

	done := make(chan Result)
	go func() { done <- turn.Run() }()

	_, ok = s.Submit("second")
	assert.False(t, ok, "second send while pending is rejected, not queued")
	assert.False(t, s.Send("third"))
	assert.Len(t, s.Transcript(), 1)

	close(release)
	res := <-done
	assert.True(t, res.Applied)
	assert.NoError(t, res.Err)
	assert.False(t, s.Pending())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, ok = s.Submit("fourth")
	assert.True(t, ok, "send is accepted again once the reply lands")
}

func TestSubmit_ConcurrentCallersOnlyOneWins(t *testing.T) {
	release := make(chan struct{})
	s, err := Open("investment", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		<-release
		return "ok", nil
	}))
	require.NoError(t, err)
	defer s.Close()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if turn, ok := s.Submit("hi"); ok {
				atomic.AddInt32(&wins, 1)
				go turn.Run()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&wins))
	close(release)
}

func TestRun_EmptyReplyUsesPlaceholder(t *testing.T) {
	s, err := Open("notetaker", staticReply(""))
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Send("notes please"))
	tr := s.Transcript()
	require.Len(t, tr, 2)
	assert.Equal(t, NoResponsePlaceholder, tr[1].Content)
}

func TestRun_ErrorBecomesAssistantMessage(t *testing.T) {
	s, err := Open("marketing", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		return "", &portal.APIError{Status: 500, Detail: "model offline"}
	}))
	require.NoError(t, err)
	defer s.Close()

	turn, ok := s.Submit("campaign ideas")
	require.True(t, ok)
	res := turn.Run()

	require.Error(t, res.Err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.RoleAssistant, res.Message.Role)
	assert.Equal(t, "Sorry, something went wrong: HTTP 500: model offline", res.Message.Content)
	assert.False(t, s.Pending(), "pending cleared on failure")
	assert.Len(t, s.Transcript(), 2)
}

func TestRun_PanicClearsPending(t *testing.T) {
	s, err := Open("tech", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		panic("boom")
	}))
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Send("hi"))
	assert.False(t, s.Pending())
	tr := s.Transcript()
	require.Len(t, tr, 2)
	assert.Contains(t, tr[1].Content, ErrorPrefix+"panic: boom")
}

func TestRun_OnlyOnce(t *testing.T) {
	var calls int32
	s, err := Open("tech", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "r", nil
	}))
	require.NoError(t, err)
	defer s.Close()

	turn, _ := s.Submit("q")
	first := turn.Run()
	second := turn.Run()
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls)
	assert.Len(t, s.Transcript(), 2)
}

func TestClose_DropsStaleCompletion(t *testing.T) {
	started := make(chan struct{})
	s, err := Open("contract", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}))
	require.NoError(t, err)

	turn, ok := s.Submit("review this")
	require.True(t, ok)

	done := make(chan Result)
	go func() { done <- turn.Run() }()
	<-started
	s.Close()

	select {
	case res := <-done:
		assert.False(t, res.Applied)
		assert.ErrorIs(t, res.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight reply")
	}

	assert.Len(t, s.Transcript(), 1, "stale reply must not be appended")
	assert.False(t, s.Pending())
	assert.True(t, s.Closed())

	_, ok = s.Submit("again")
	assert.False(t, ok, "closed sessions accept nothing")
	s.Close()
}

func TestClose_ReplyIgnoringContextIsStillDropped(t *testing.T) {
	release := make(chan struct{})
	s, err := Open("social", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		<-release
		return "late", nil
	}))
	require.NoError(t, err)

	turn, _ := s.Submit("post idea")
	done := make(chan Result)
	go func() { done <- turn.Run() }()

	s.Close()
	close(release)
	res := <-done
	assert.False(t, res.Applied)
	assert.ErrorIs(t, res.Err, ErrClosed)
	assert.Len(t, s.Transcript(), 1)
}

func TestWithTimeout(t *testing.T) {
	s, err := Open("tech", ReplierFunc(func(ctx context.Context, id string, tr []model.Message) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), WithTimeout(20*time.Millisecond))
	require.NoError(t, err)
	defer s.Close()

	turn, _ := s.Submit("hang")
	res := turn.Run()
	assert.True(t, errors.Is(res.Err, context.DeadlineExceeded))
	assert.True(t, res.Applied)
}

func TestTranscript_IsACopy(t *testing.T) {
	s, err := Open("tech", staticReply("r"))
	require.NoError(t, err)
	defer s.Close()
	s.Send("q")

	tr := s.Transcript()
	tr[0].Content = "edited"
	assert.Equal(t, "q", s.Transcript()[0].Content)
}

// End to end through the HTTP client.
func TestSession_WithPortalClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good":
			_, _ = io.WriteString(w, `{"response":"Hello from the backend"}`)
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"Invalid token"}`)
		}
	}))
	defer srv.Close()

	s, err := Open("tech", portal.NewClient(srv.URL, portal.StaticToken("good")))
	require.NoError(t, err)
	defer s.Close()
	s.Send("hi")
	assert.Equal(t, "Hello from the backend", s.Transcript()[1].Content)

	bad, err := Open("tech", portal.NewClient(srv.URL, portal.StaticToken("bad")))
	require.NoError(t, err)
	defer bad.Close()
	bad.Send("hi")
	assert.Equal(t, "Sorry, something went wrong: HTTP 401: Invalid token", bad.Transcript()[1].Content)
}

func TestSession_PortalTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	s, err := Open("tech", portal.NewClient(url, portal.StaticToken("good")))
	require.NoError(t, err)
	defer s.Close()

	turn, ok := s.Submit("is the VPN down?")
	require.True(t, ok)
	res := turn.Run()

	require.Error(t, res.Err)
	assert.True(t, res.Applied)
	assert.Equal(t, model.RoleAssistant, res.Message.Role)
	assert.True(t, strings.HasPrefix(res.Message.Content, "Sorry, something went wrong: "))
	assert.Contains(t, res.Message.Content, "request failed")
	assert.False(t, s.Pending(), "pending cleared on transport failure")
	assert.Len(t, s.Transcript(), 2)
}
