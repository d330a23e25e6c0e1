// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/portal-tui/internal/util"
)

// PreviewLength is the number of characters of the last message kept as a
// record preview.
const PreviewLength = 100

// StatusCompleted is the only status a saved chat can have.
const StatusCompleted = "completed"

// ChatRecord is a persisted conversation. List responses carry the same
// shape as detail responses.
type ChatRecord struct {
	ID            string    `json:"id" yaml:"id"`
	AssistantID   string    `json:"assistant_id" yaml:"assistant_id"`
	AssistantName string    `json:"assistant_name" yaml:"assistant_name"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Preview       string    `json:"preview" yaml:"preview"`
	Messages      []Message `json:"messages" yaml:"messages"`
	UserName      string    `json:"user_name" yaml:"user_name"`
	UserEmail     string    `json:"user_email" yaml:"user_email"`

	// naiveTimestamp is the wire text of a timestamp sent without a zone.
	// It is written back unchanged so exports match the backend.
	naiveTimestamp string
}

// PreviewOf returns the preview for a transcript: the first PreviewLength
// characters of the last message.
func PreviewOf(msgs []Message) string {
	if len(msgs) == 0 {
		return ""
	}
	return util.TruncateRunesNoEllipsis(msgs[len(msgs)-1].Content, PreviewLength)
}

// MessageCount returns the number of messages in the record.
func (r ChatRecord) MessageCount() int {
	return len(r.Messages)
}

// Topic returns a one-line topic for tables: the preview on one line.
func (r ChatRecord) Topic() string {
	return util.SingleLine(r.Preview)
}

// Date returns the local calendar date of the record.
func (r ChatRecord) Date() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.Local().Format("2006-01-02")
}

// Time returns the local wall-clock time of the record.
func (r ChatRecord) Time() string {
	if r.Timestamp.IsZero() {
		return ""
	}
	return r.Timestamp.Local().Format("15:04:05")
}

// Status returns the record status shown in history tables.
func (r ChatRecord) Status() string {
	return StatusCompleted
}

// Matches reports whether the folded query is a substring of the folded
// assistant name or preview. fold must be idempotent.
func (r ChatRecord) Matches(foldedQuery string, fold func(string) string) bool {
	if foldedQuery == "" {
		return true
	}
	return strings.Contains(fold(r.AssistantName), foldedQuery) ||
		strings.Contains(fold(r.Preview), foldedQuery)
}

// naiveLayouts are accepted after RFC 3339. Backends that emit ISO-8601
// without a zone are read as local time.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON decodes a record, tolerating timestamps without a zone.
func (r *ChatRecord) UnmarshalJSON(data []byte) error {
	type alias ChatRecord
	aux := struct {
		*alias
		Timestamp string `json:"timestamp"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, naive, err := parseTimestamp(aux.Timestamp)
	if err != nil {
		return err
	}
	r.Timestamp = ts
	r.naiveTimestamp = ""
	if naive {
		r.naiveTimestamp = aux.Timestamp
	}
	return nil
}

// MarshalJSON encodes a record. A zoneless timestamp decoded from the
// backend keeps its original text unless Timestamp has since changed.
func (r ChatRecord) MarshalJSON() ([]byte, error) {
	type alias ChatRecord
	if r.naiveTimestamp != "" {
		if ts, _, err := parseTimestamp(r.naiveTimestamp); err == nil && ts.Equal(r.Timestamp) {
			return json.Marshal(struct {
				alias
				Timestamp string `json:"timestamp"`
			}{alias: alias(r), Timestamp: r.naiveTimestamp})
		}
	}
	return json.Marshal(alias(r))
}

// ParseTimestamp parses a record timestamp. An empty string is the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	t, _, err := parseTimestamp(s)
	return t, err
}

// parseTimestamp also reports whether s carried no zone and was read as
// local time.
func parseTimestamp(s string) (time.Time, bool, error) {
	if s == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, false, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid timestamp %q", s)
}
