// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama is the reply engine the development backend uses when
// reply_mode is "ollama".
//
// It speaks the non-streaming /api/chat endpoint of a local Ollama server
// and primes each conversation with a system prompt built from the
// assistant's catalog entry.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API
//   - Message: Chat message in Ollama's wire shape
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL:      cfg.Server.OllamaURL,
//	    DefaultModel: cfg.Server.OllamaModel,
//	})
//	reply, err := client.Reply(ctx, "tech", transcript)
package ollama
