// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/portal"
)

var (
	// ErrNotLoggedIn is returned when no valid token is available.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidInput is returned for malformed login or sign-up fields.
	ErrInvalidInput = errors.New("invalid input")
)

// AuthAPI is the subset of the backend client the provider needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*portal.AuthResponse, error)
	Register(ctx context.Context, req portal.RegisterRequest) (*portal.AuthResponse, error)
	Me(ctx context.Context) (*portal.User, error)
}

// Provider manages the signed-in identity. It is safe for concurrent use.
type Provider struct {
	api   AuthAPI
	store TokenStore
	log   *logging.Logger

	mu       sync.RWMutex
	identity *Identity
}

// NewProvider creates a provider. The client behind api must read its token
// from store.
func NewProvider(api AuthAPI, store TokenStore) *Provider {
	return &Provider{api: api, store: store, log: logging.Nop()}
}

// WithLogger sets the logger.
func (p *Provider) WithLogger(log *logging.Logger) *Provider {
	if log != nil {
		p.log = log
	}
	return p
}

// Login authenticates with email and password and persists the token.
func (p *Provider) Login(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return Identity{}, err
	}
	if password == "" {
		return Identity{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	resp, err := p.api.Login(ctx, email, password)
	if err != nil {
		p.log.Warn("login failed", "email", email, "error", err)
		return Identity{}, fmt.Errorf("login: %w", err)
	}
	return p.establish(resp, MethodPassword)
}

// Register creates an account, then signs in with it.
func (p *Provider) Register(ctx context.Context, name, department, email, password string) (Identity, error) {
	req := portal.RegisterRequest{
		Name:       strings.TrimSpace(name),
		Department: strings.TrimSpace(department),
		Email:      strings.TrimSpace(email),
		Password:   password,
	}
	if req.Name == "" {
		return Identity{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Department == "" {
		return Identity{}, fmt.Errorf("%w: department is required", ErrInvalidInput)
	}
	if err := validateEmail(req.Email); err != nil {
		return Identity{}, err
	}
	if password == "" {
		return Identity{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	resp, err := p.api.Register(ctx, req)
	if err != nil {
		p.log.Warn("registration failed", "email", req.Email, "error", err)
		return Identity{}, fmt.Errorf("register: %w", err)
	}
	return p.establish(resp, MethodPassword)
}

// Restore rebuilds the identity from the persisted token. A token the
// backend rejects is purged. Transport errors keep the token so a later
// attempt can succeed.
func (p *Provider) Restore(ctx context.Context) (Identity, error) {
	token, err := p.store.Load()
	if err != nil {
		return Identity{}, err
	}
	if token == "" {
		return Identity{}, ErrNotLoggedIn
	}

	user, err := p.api.Me(ctx)
	if err != nil {
		if errors.Is(err, portal.ErrUnauthorized) {
			p.log.Info("saved token rejected, signing out")
			if delErr := p.store.Delete(); delErr != nil {
				p.log.Warn("failed to purge token", "error", delErr)
			}
			p.clear()
			return Identity{}, fmt.Errorf("%w: %v", ErrNotLoggedIn, err)
		}
		return Identity{}, fmt.Errorf("restore session: %w", err)
	}

	id := identityFrom(*user, token, MethodRestored)
	p.set(id)
	return id, nil
}

// Logout purges the token and clears the identity. The backend keeps no
// session state, so nothing is sent.
func (p *Provider) Logout() error {
	p.clear()
	if err := p.store.Delete(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Forget clears the in-memory identity without touching the store. Used
// when another process has already removed the token.
func (p *Provider) Forget() {
	p.clear()
}

// Current returns the signed-in identity.
func (p *Provider) Current() (Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.identity == nil {
		return Identity{}, false
	}
	return *p.identity, true
}

// Token reads the persisted token. It implements portal.TokenSource.
func (p *Provider) Token() (string, error) {
	return p.store.Load()
}

func (p *Provider) establish(resp *portal.AuthResponse, method string) (Identity, error) {
	if resp.Token == "" {
		return Identity{}, errors.New("backend returned no token")
	}
	if err := p.store.Save(resp.Token); err != nil {
		return Identity{}, err
	}
	id := identityFrom(resp.User, resp.Token, method)
	p.set(id)
	p.log.Info("signed in", "email", id.Email, "department", id.Department)
	return id, nil
}

func (p *Provider) set(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = &id
}

func (p *Provider) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.identity = nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: %q is not a valid email address", ErrInvalidInput, email)
	}
	return nil
}
