// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/portal-tui/internal/catalog"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/model"
)

const (
	// NoResponsePlaceholder is shown when the backend reply has no text.
	NoResponsePlaceholder = "No response received."

	// ErrorPrefix starts the assistant message that reports a failed turn.
	ErrorPrefix = "Sorry, something went wrong: "
)

// ErrClosed is reported by a turn that completed after its session closed.
var ErrClosed = errors.New("chat session closed")

// Replier produces one assistant reply for a transcript. An empty reply is
// not an error.
type Replier interface {
	Reply(ctx context.Context, assistantID string, transcript []model.Message) (string, error)
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, assistantID string, transcript []model.Message) (string, error)

// Reply implements Replier.
func (f ReplierFunc) Reply(ctx context.Context, assistantID string, transcript []model.Message) (string, error) {
	return f(ctx, assistantID, transcript)
}

// Option configures a Session.
type Option func(*Session)

// WithTimeout bounds each reply. Zero, the default, means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(log *logging.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// Session is a live conversation with one assistant. It is safe for
// concurrent use.
type Session struct {
	assistant catalog.Assistant
	replier   Replier
	timeout   time.Duration
	log       *logging.Logger
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	transcript []model.Message
	pending    bool
	closed     bool
}

// Open starts an empty conversation with the assistant id.
func Open(assistantID string, r Replier, opts ...Option) (*Session, error) {
	a, err := catalog.Lookup(assistantID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("chat: nil replier")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		assistant: a,
		replier:   r,
		log:       logging.Nop(),
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("assistant", a.ID)
	return s, nil
}

// AssistantID returns the id of the assistant.
func (s *Session) AssistantID() string {
	return s.assistant.ID
}

// Assistant returns the assistant descriptor.
func (s *Session) Assistant() catalog.Assistant {
	return s.assistant
}

// StartedAt returns when the session was opened.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Transcript returns a copy of the messages so far.
func (s *Session) Transcript() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneMessages(s.transcript)
}

// Len returns the number of messages so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transcript)
}

// Pending reports whether a reply is outstanding.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Submit appends a user message and returns the turn that will fetch the
// reply. It returns false without changing anything when text is blank, a
// reply is pending, or the session is closed.
func (s *Session) Submit(text string) (*Turn, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending || s.closed {
		return nil, false
	}

	s.transcript = append(s.transcript, model.NewUserMessage(text))
	s.pending = true

	return &Turn{
		session:    s,
		transcript: model.CloneMessages(s.transcript),
	}, true
}

// Send submits text and waits for the reply. It returns false when Submit
// would.
func (s *Session) Send(text string) bool {
	turn, ok := s.Submit(text)
	if !ok {
		return false
	}
	turn.Run()
	return true
}

// Close ends the session and cancels any in-flight reply. It is safe to call
// more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// =============================================================================
// TURN
// =============================================================================

// Turn is one pending request/reply exchange.
type Turn struct {
	session    *Session
	transcript []model.Message
	once       sync.Once
	result     Result
}

// Result is the outcome of a turn.
type Result struct {
	// Message is the assistant message built from the reply or the error.
	Message model.Message
	// Err is the failure that Message reports, if any.
	Err error
	// Applied is false when the session closed before the reply arrived and
	// Message was dropped.
	Applied bool
}

// Transcript returns the messages sent with this turn.
func (t *Turn) Transcript() []model.Message {
	return model.CloneMessages(t.transcript)
}

// Run performs the backend call and appends the assistant message. It runs
// at most once; later calls return the first result.
func (t *Turn) Run() Result {
	t.once.Do(func() {
		t.result = t.run()
	})
	return t.result
}

func (t *Turn) run() (res Result) {
	s := t.session
	defer s.finish()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := t.call(ctx)
	if err != nil {
		res.Err = err
		res.Message = model.NewAssistantMessage(ErrorPrefix + err.Error())
		s.log.Warn("reply failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
	} else {
		if strings.TrimSpace(reply) == "" {
			reply = NoResponsePlaceholder
		}
		res.Message = model.NewAssistantMessage(reply)
		s.log.Debug("reply received", "chars", len(reply), "duration_ms", time.Since(start).Milliseconds())
	}

	res.Applied = s.appendReply(res.Message)
	if !res.Applied {
		s.log.Debug("dropping reply for closed session")
		if res.Err == nil {
			res.Err = ErrClosed
		}
	}
	return res
}

// call invokes the replier, turning a panic into an error so the turn still
// produces a message.
func (t *Turn) call(ctx context.Context) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.session.replier.Reply(ctx, t.session.assistant.ID, t.Transcript())
}

func (s *Session) appendReply(msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.transcript = append(s.transcript, msg)
	return true
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
}
