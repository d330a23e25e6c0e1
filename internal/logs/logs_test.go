// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/portal-tui/internal/export"
	"github.com/jeranaias/portal-tui/internal/model"
)

type fakeSource struct {
	chats   []model.ChatRecord
	err     error
	detail  map[string]*model.ChatRecord
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeSource) wait() {
	if f.started != nil {
		close(f.started)
	}
	if f.gate != nil {
		<-f.gate
	}
}

func (f *fakeSource) Chats(ctx context.Context) ([]model.ChatRecord, error) {
	f.wait()
	return f.chats, f.err
}

func (f *fakeSource) Chat(ctx context.Context, id string) (*model.ChatRecord, error) {
	f.wait()
	if rec, ok := f.detail[id]; ok {
		return rec, nil
	}
	return nil, errors.New("HTTP 404: Chat not found")
}

func records() []model.ChatRecord {
	return []model.ChatRecord{
		{ID: "marketing_1", AssistantName: "Marketing Assistant", Preview: "Launch plan for Q3"},
		{ID: "contract_2", AssistantName: "Contract Analyzer", Preview: "The NDA looks standard"},
		{ID: "tech_3", AssistantName: "Tech Support Assistant", Preview: "Café wifi down, reboot the VPN"},
	}
}

func TestLoad_ReversesServerOrder(t *testing.T) {
	src := &fakeSource{chats: records()}
	s := New(src, nil)

	applied, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)

	ids := func(rs []model.ChatRecord) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}
	assert.Equal(t, []string{"tech_3", "contract_2", "marketing_1"}, ids(s.All()))
	assert.Equal(t, ids(s.All()), ids(s.Visible()))
	assert.Equal(t, "marketing_1", src.chats[0].ID, "source slice is not mutated")
	assert.Equal(t, "", s.EmptyText())
}

func TestLoad_FailureKeepsPreviousList(t *testing.T) {
	src := &fakeSource{chats: records()}
	s := New(src, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	src.err = errors.New("connection refused")
	src.chats = nil
	_, err = s.Load(context.Background())
	require.Error(t, err)

	assert.Len(t, s.All(), 3)
	assert.EqualError(t, s.LastError(), "connection refused")
	assert.False(t, s.Loading())
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"tech_3", "contract_2", "marketing_1"}},
		{"   ", []string{"tech_3", "contract_2", "marketing_1"}},
		{"contract", []string{"contract_2"}},
		{"ANALYZER", []string{"contract_2"}},
		{"nda", []string{"contract_2"}},
		{"assistant", []string{"tech_3", "marketing_1"}},
		{"CAFÉ", []string{"tech_3"}},
		{"vpn", []string{"tech_3"}},
		{"payroll", []string{}},
	}

	s := New(&fakeSource{chats: records()}, nil)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			s.Filter(tt.query)
			got := []string{}
			for _, r := range s.Visible() {
				got = append(got, r.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.query, s.Query())
		})
	}
}

func TestFilter_AppliesToLaterLoads(t *testing.T) {
	src := &fakeSource{chats: records()[:1]}
	s := New(src, nil)
	s.Filter("nda")
	_, _ = s.Load(context.Background())
	assert.Empty(t, s.Visible())
	assert.Equal(t, NoMatchesText, s.EmptyText())

	src.chats = records()
	_, _ = s.Load(context.Background())
	require.Len(t, s.Visible(), 1)
}

func TestEmptyText(t *testing.T) {
	src := &fakeSource{gate: make(chan struct{}), started: make(chan struct{})}
	s := New(src, nil)

	done := make(chan struct{})
	go func() {
		_, _ = s.Load(context.Background())
		close(done)
	}()
	<-src.started
	assert.Equal(t, LoadingText, s.EmptyText())
	assert.True(t, s.Loading())
	close(src.gate)
	<-done

	assert.Equal(t, EmptyHistoryText, s.EmptyText())
}

func TestUnmount_DiscardsStaleLoad(t *testing.T) {
	src := &fakeSource{chats: records(), gate: make(chan struct{}), started: make(chan struct{})}
	s := New(src, nil)

	type result struct {
		applied bool
		err     error
	}
	done := make(chan result)
	go func() {
		applied, err := s.Load(context.Background())
		done <- result{applied, err}
	}()

	<-src.started
	s.Unmount()
	close(src.gate)

	r := <-done
	assert.False(t, r.applied)
	assert.NoError(t, r.err)
	assert.Empty(t, s.All(), "stale completion must not populate the list")
}

func TestOpenDetail(t *testing.T) {
	full := &model.ChatRecord{ID: "tech_3", Messages: []model.Message{{Role: model.RoleUser, Content: "vpn?"}}}
	s := New(&fakeSource{detail: map[string]*model.ChatRecord{"tech_3": full}}, nil)

	_, ok := s.Selected()
	assert.False(t, ok)

	applied, err := s.OpenDetail(context.Background(), "tech_3")
	require.NoError(t, err)
	assert.True(t, applied)
	rec, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, rec.MessageCount())

	_, err = s.OpenDetail(context.Background(), "gone")
	assert.Error(t, err)
	rec, ok = s.Selected()
	assert.True(t, ok, "failed fetch keeps the selection")
	assert.Equal(t, "tech_3", rec.ID)

	s.CloseDetail()
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestUnmount_DiscardsStaleDetail(t *testing.T) {
	full := &model.ChatRecord{ID: "tech_3"}
	src := &fakeSource{detail: map[string]*model.ChatRecord{"tech_3": full}, gate: make(chan struct{}), started: make(chan struct{})}
	s := New(src, nil)

	done := make(chan bool)
	go func() {
		applied, _ := s.OpenDetail(context.Background(), "tech_3")
		done <- applied
	}()
	<-src.started
	s.Unmount()
	close(src.gate)

	assert.False(t, <-done)
	_, ok := s.Selected()
	assert.False(t, ok)
}

func TestExportAll_UsesFullList(t *testing.T) {
	s := New(&fakeSource{chats: records()}, nil)
	s.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }
	_, err := s.Load(context.Background())
	require.NoError(t, err)
	s.Filter("nda")
	require.Len(t, s.Visible(), 1)

	f, err := s.ExportAll(export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "all_chats_20250203T040506Z.json", f.Name)

	var back []model.ChatRecord
	require.NoError(t, json.Unmarshal(f.Data, &back))
	assert.Len(t, back, 3)
}

func TestExportOne(t *testing.T) {
	s := New(&fakeSource{}, nil)
	f, err := s.ExportOne(records()[1], export.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "chat_contract_2.json", f.Name)
}

func TestExportOne_RoundTripsBackendRecord(t *testing.T) {
	for _, ts := range []string{"2025-01-02T15:04:05.123456", "2025-01-02T15:04:05Z", "2025-01-02T15:04:05+02:00"} {
		t.Run(ts, func(t *testing.T) {
			body := `{"id":"contract_2","assistant_id":"contract","assistant_name":"Contract Analyzer",` +
				`"timestamp":"` + ts + `","preview":"The NDA looks standard",` +
				`"messages":[{"role":"user","content":"Review this NDA"},{"role":"assistant","content":"The NDA looks standard"}],` +
				`"user_name":"Ada Lovelace","user_email":"ada@example.com"}`
			var rec model.ChatRecord
			require.NoError(t, json.Unmarshal([]byte(body), &rec))

			f, err := New(&fakeSource{}, nil).ExportOne(rec, export.FormatJSON)
			require.NoError(t, err)

			var back model.ChatRecord
			require.NoError(t, json.Unmarshal(f.Data, &back))
			assert.Equal(t, rec, back)
		})
	}
}
