// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	if !dark.IsDark {
		t.Error("dark mode should report IsDark")
	}
	if dark.GlamourStyle() != "dark" {
		t.Errorf("GlamourStyle = %q", dark.GlamourStyle())
	}

	light := NewTheme(ModeLight)
	if light.IsDark {
		t.Error("light mode should not report IsDark")
	}
	if light.GlamourStyle() != "light" {
		t.Errorf("GlamourStyle = %q", light.GlamourStyle())
	}
}

func TestTheme_StylesRenderText(t *testing.T) {
	th := NewTheme(ModeLight)
	for name, out := range map[string]string{
		"banner":  th.Banner.Render("Welcome"),
		"card":    th.Card.Render("Welcome"),
		"bubble":  th.UserBubble.Render("Welcome"),
		"section": th.Section.Render("Welcome"),
	} {
		if !strings.Contains(out, "Welcome") {
			t.Errorf("%s style lost its text: %q", name, out)
		}
	}
}

func TestRenderHelpers_IncludeIndicators(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.got, tt.want) {
			t.Errorf("%s: %q missing %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestDefaultTheme_IsCached(t *testing.T) {
	if DefaultTheme() != DefaultTheme() {
		t.Error("DefaultTheme should return the same instance")
	}
}
