// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the portal TUI.
//
// Colors are Lip Gloss AdaptiveColors, so the light or dark variant follows
// the terminal background unless the theme is forced through config.
//
// # Key Types
//
//   - Theme: Named styles for the shell, screens, and widgets
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	fmt.Println(theme.Banner.Render(identity.Welcome()))
package styles
