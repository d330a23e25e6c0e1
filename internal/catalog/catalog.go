// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog is the static list of AI assistants offered by the portal.
//
// The set is fixed at build time. Lookups are case-insensitive and never
// mutate the catalog; All returns a copy in display order.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrUnknownAssistant is returned when an id is not in the catalog.
var ErrUnknownAssistant = errors.New("unknown assistant")

// Assistant describes one launchable assistant.
type Assistant struct {
	// ID is the stable key used in routes and the backend path.
	ID string
	// Name is the display name.
	Name string
	// Purpose is the long description shown in the chat header.
	Purpose string
	// Summary is the short text shown on a dashboard card.
	Summary string
	// Greeting is the canned opening line of the demo replier.
	Greeting string
}

// UnknownName is the display name recorded for ids outside the catalog.
const UnknownName = "Unknown Assistant"

var assistants = []Assistant{
	{
		ID:       "marketing",
		Name:     "Marketing Assistant",
		Purpose:  "Create campaigns, analyze trends, and generate marketing content with AI-powered insights.",
		Summary:  "Create campaigns, analyze trends, and generate marketing content.",
		Greeting: "Hello! I'm your Marketing Assistant. I can help you create campaigns, analyze trends, and generate marketing content. What would you like to work on today?",
	},
	{
		ID:       "social",
		Name:     "Social Media Assistant",
		Purpose:  "Generate posts, schedule content, and analyze engagement metrics across all platforms.",
		Summary:  "Generate posts, schedule content, and analyze engagement.",
		Greeting: "Hi! I'm your Social Media Assistant. I can help you generate posts, schedule content, and analyze engagement. How can I assist you?",
	},
	{
		ID:       "contract",
		Name:     "Contract Analyzer",
		Purpose:  "Review contracts, identify risks, and extract key terms automatically with AI precision.",
		Summary:  "Review contracts, identify risks, and extract key terms.",
		Greeting: "Welcome! I'm your Contract Analyzer. Upload a contract and I'll help you review it, identify risks, and extract key terms.",
	},
	{
		ID:       "investment",
		Name:     "Investment Analyst",
		Purpose:  "Analyze portfolios, research companies, and generate comprehensive investment reports.",
		Summary:  "Analyze portfolios, research companies, and generate reports.",
		Greeting: "Hello! I'm your Investment Analyst. I can help analyze portfolios, research companies, and generate investment reports. What can I do for you?",
	},
	{
		ID:       "notetaker",
		Name:     "Note Taker AI",
		Purpose:  "Automatically capture, organize, and summarize meeting notes and conversations with intelligent formatting.",
		Summary:  "Capture, organize, and summarize meeting notes automatically.",
		Greeting: "Hello! I'm your Note Taker AI. I can help you capture, organize, and summarize meeting notes automatically. Start speaking or share your meeting details and I'll create structured notes for you.",
	},
	{
		ID:       "meeting",
		Name:     "Meeting Prep Assistant",
		Purpose:  "Prepare agendas, summarize materials, and generate talking points for productive meetings.",
		Summary:  "Prepare agendas, summarize materials, and generate talking points.",
		Greeting: "Hi there! I'm your Meeting Prep Assistant. I can help prepare agendas, summarize materials, and generate talking points. What meeting are you preparing for?",
	},
	{
		ID:       "tech",
		Name:     "Tech Support Assistant",
		Purpose:  "Troubleshoot issues, answer IT questions, and provide technical guidance instantly.",
		Summary:  "Troubleshoot issues, answer IT questions, and get guidance.",
		Greeting: "Hello! I'm your Tech Support Assistant. I can help troubleshoot issues, answer IT questions, and provide technical guidance. What do you need help with?",
	},
}

var index = buildIndex()

// foldID case-folds an id. Casers are stateful, so each call gets its own.
func foldID(id string) string {
	return cases.Fold().String(strings.TrimSpace(id))
}

func buildIndex() map[string]int {
	m := make(map[string]int, len(assistants))
	for i, a := range assistants {
		m[foldID(a.ID)] = i
	}
	return m
}

// All returns the assistants in display order.
func All() []Assistant {
	out := make([]Assistant, len(assistants))
	copy(out, assistants)
	return out
}

// IDs returns the assistant ids in display order.
func IDs() []string {
	ids := make([]string, len(assistants))
	for i, a := range assistants {
		ids[i] = a.ID
	}
	return ids
}

// Len returns the number of assistants.
func Len() int { return len(assistants) }

// Lookup returns the assistant with the given id.
func Lookup(id string) (Assistant, error) {
	i, ok := index[foldID(id)]
	if !ok {
		return Assistant{}, fmt.Errorf("%w: %q", ErrUnknownAssistant, id)
	}
	return assistants[i], nil
}

// IsKnown reports whether id names an assistant.
func IsKnown(id string) bool {
	_, err := Lookup(id)
	return err == nil
}

// Purpose returns the display name and purpose text for id.
func Purpose(id string) (name, purpose string, err error) {
	a, err := Lookup(id)
	if err != nil {
		return "", "", err
	}
	return a.Name, a.Purpose, nil
}

// NameOf returns the display name for id, or UnknownName.
func NameOf(id string) string {
	if a, err := Lookup(id); err == nil {
		return a.Name
	}
	return UnknownName
}
