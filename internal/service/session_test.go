package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
)

// scriptedStrategist records calls; without an answer func it echoes the platform name.
type scriptedStrategist struct {
	mu     sync.Mutex
	calls  []StrategyRequest
	answer func(call int, req StrategyRequest) (*domain.Strategy, error)
}

func (f *scriptedStrategist) Brainstorm(ctx context.Context, req StrategyRequest) (*domain.Strategy, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.answer != nil {
		return f.answer(call, req)
	}
	return &domain.Strategy{
		Caption:           "caption for " + req.PlatformName,
		Hashtags:          []string{"#kit"},
		CreativeReasoning: "reasoning for " + req.PlatformName,
	}, nil
}

func (f *scriptedStrategist) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type scriptedRenderer struct {
	mu     sync.Mutex
	calls  []RenderRequest
	answer func(call int, req RenderRequest) (*domain.ImagePayload, error)
}

func (f *scriptedRenderer) Render(ctx context.Context, req RenderRequest) (*domain.ImagePayload, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.answer != nil {
		return f.answer(call, req)
	}
	return &domain.ImagePayload{MIMEType: "image/png", Data: []byte(fmt.Sprintf("render-%d", call))}, nil
}

func (f *scriptedRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fixedClock always returns the same instant so id collisions are exercised.
func fixedClock() time.Time {
	return time.UnixMilli(1700000000000)
}

func newTestSession(st Strategist, r Renderer) *Session {
	return NewSession("sess-test", st, r, WithClock(fixedClock))
}

func payload(s string) *domain.ImagePayload {
	return &domain.ImagePayload{MIMEType: "image/png", Data: []byte(s)}
}

func TestStartBatchEndToEnd(t *testing.T) {
	st := &scriptedStrategist{answer: func(call int, req StrategyRequest) (*domain.Strategy, error) {
		return []*domain.Strategy{
			{Caption: "C1", Hashtags: []string{"#a", "#b"}, CreativeReasoning: "R1"},
			{Caption: "C2", Hashtags: []string{"#c"}, CreativeReasoning: "R2"},
		}[call], nil
	}}
	r := &scriptedRenderer{answer: func(call int, req RenderRequest) (*domain.ImagePayload, error) {
		return payload([]string{"Y1", "Y2"}[call]), nil
	}}
	s := newTestSession(st, r)

	err := s.StartBatch(context.Background(), BatchRequest{
		Source:      payload("X"),
		PlatformIDs: []string{"ig-square", "fb-cover"},
		Brief:       "launch sale",
		Theme:       domain.ThemeDark,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := s.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	want := []struct {
		platform, image, caption string
		hashtags                 []string
	}{
		{"fb-cover", payload("Y2").DataURL(), "C2", []string{"#c"}},
		{"ig-square", payload("Y1").DataURL(), "C1", []string{"#a", "#b"}},
	}
	for i, w := range want {
		got := results[i]
		if got.Platform.ID != w.platform || got.ImageURL != w.image || got.Caption != w.caption ||
			!reflect.DeepEqual(got.Hashtags, w.hashtags) || got.Theme != domain.ThemeDark {
			t.Errorf("result[%d] = %+v, want %+v", i, got, w)
		}
	}

	status := s.Status()
	if status.Progress != 100 || status.Loading || status.Error != "" {
		t.Errorf("final status = %+v", status)
	}

	if r.calls[1].CreativeReasoning != "R2" || r.calls[1].AspectRatio != domain.AspectWide {
		t.Errorf("renderer did not receive strategy reasoning or ratio: %+v", r.calls[1])
	}
	if st.calls[0].Brief != "launch sale" || st.calls[0].Theme != domain.ThemeDark {
		t.Errorf("strategist did not receive brief/theme: %+v", st.calls[0])
	}
}

func TestStartBatchUniqueIDs(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})

	for i := 0; i < 2; i++ {
		err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}})
		if err != nil {
			t.Fatalf("batch %d: %v", i, err)
		}
	}

	results := s.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID == results[1].ID {
		t.Errorf("duplicate result id %s", results[0].ID)
	}
	if results[1].ID != "ig-square-1700000000000" || results[0].ID != "ig-square-1700000000000-2" {
		t.Errorf("unexpected ids: %s, %s", results[0].ID, results[1].ID)
	}
}

func TestStartBatchProgressEvents(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	ids := []string{"ig-square", "ig-story", "tw-post"}
	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: ids}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var progress []int
	var types []EventType
	for len(types) < 5 {
		select {
		case e := <-events:
			types = append(types, e.Type)
			if e.Type == EventItemCompleted {
				progress = append(progress, e.Status.Progress)
				if !e.Status.Loading {
					t.Error("loading must stay true while items complete")
				}
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for events, got %v", types)
		}
	}

	if !reflect.DeepEqual(progress, []int{33, 67, 100}) {
		t.Errorf("progress = %v, want [33 67 100]", progress)
	}
	if types[0] != EventBatchStarted || types[4] != EventBatchCompleted {
		t.Errorf("event order = %v", types)
	}
}

func TestStartBatchNoOp(t *testing.T) {
	tests := []struct {
		name string
		req  BatchRequest
	}{
		{"nil source", BatchRequest{PlatformIDs: []string{"ig-square"}}},
		{"empty source", BatchRequest{Source: &domain.ImagePayload{}, PlatformIDs: []string{"ig-square"}}},
		{"empty selection", BatchRequest{Source: payload("X")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st, r := &scriptedStrategist{}, &scriptedRenderer{}
			s := newTestSession(st, r)
			s.SetBrief("keep me")
			before := s.Snapshot()

			if err := s.StartBatch(context.Background(), tc.req); err != nil {
				t.Fatalf("no-op must not error, got %v", err)
			}
			if !reflect.DeepEqual(before, s.Snapshot()) {
				t.Errorf("state changed: before=%+v after=%+v", before, s.Snapshot())
			}
			if st.callCount() != 0 || r.callCount() != 0 {
				t.Error("clients must not be called")
			}
		})
	}
}

func TestStartBatchFailFast(t *testing.T) {
	boom := &domain.ServiceError{Service: "strategy", Op: "brainstorm", StatusCode: 503, Err: errors.New("unavailable")}
	st := &scriptedStrategist{answer: func(call int, req StrategyRequest) (*domain.Strategy, error) {
		if call == 1 {
			return nil, boom
		}
		return &domain.Strategy{Caption: "ok", Hashtags: []string{"#ok"}, CreativeReasoning: "r"}, nil
	}}
	r := &scriptedRenderer{}
	s := newTestSession(st, r)

	err := s.StartBatch(context.Background(), BatchRequest{
		Source:      payload("X"),
		PlatformIDs: []string{"ig-square", "fb-post", "yt-banner"},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected strategy failure, got %v", err)
	}

	results := s.Results()
	if len(results) != 1 || results[0].Platform.ID != "ig-square" {
		t.Fatalf("expected only the first result, got %+v", results)
	}

	status := s.Status()
	if status.Loading || status.Error == "" || status.Progress != 0 {
		t.Errorf("status after failure = %+v", status)
	}
	if st.callCount() != 2 || r.callCount() != 1 {
		t.Errorf("remaining platforms must not be attempted: strategy=%d render=%d", st.callCount(), r.callCount())
	}
}

func TestStartBatchUnknownPlatformAborts(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})

	err := s.StartBatch(context.Background(), BatchRequest{
		Source:      payload("X"),
		PlatformIDs: []string{"ig-square", "vine-loop", "fb-post"},
	})
	if !errors.Is(err, domain.ErrPlatformNotFound) {
		t.Fatalf("expected ErrPlatformNotFound, got %v", err)
	}
	if n := len(s.Results()); n != 1 {
		t.Errorf("expected 1 result before the abort, got %d", n)
	}
	if s.Status().Error == "" {
		t.Error("error must be recorded in status")
	}
}

func TestStartBatchRenderFailure(t *testing.T) {
	r := &scriptedRenderer{answer: func(call int, req RenderRequest) (*domain.ImagePayload, error) {
		return nil, &domain.ServiceError{Service: "rendering", Op: "render", Err: domain.ErrNoImageInResponse}
	}}
	s := newTestSession(&scriptedStrategist{}, r)

	err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}})
	if !errors.Is(err, domain.ErrNoImageInResponse) {
		t.Fatalf("expected ErrNoImageInResponse, got %v", err)
	}
	if len(s.Results()) != 0 {
		t.Error("no result may be produced without an image")
	}
}

func TestStartBatchFallbackContinues(t *testing.T) {
	st := &scriptedStrategist{answer: func(call int, req StrategyRequest) (*domain.Strategy, error) {
		if call == 0 {
			return FallbackStrategy(req.PlatformName), nil
		}
		return &domain.Strategy{Caption: "real", Hashtags: []string{"#real"}, CreativeReasoning: "r"}, nil
	}}
	s := newTestSession(st, &scriptedRenderer{})

	err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"tw-post", "li-banner"}})
	if err != nil {
		t.Fatalf("fallback must not fail the batch: %v", err)
	}

	results := s.Results()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	fallback := results[1]
	if fallback.Caption != "Freshly reimagined for your X (Twitter) feed." ||
		fallback.CreativeReasoning != "Optimizing layout for X (Twitter) to maximize visual impact." ||
		!reflect.DeepEqual(fallback.Hashtags, []string{"#ai-art", "#socialmedia", "#xtwitter"}) {
		t.Errorf("unexpected fallback result: %+v", fallback)
	}
}

// blockingStrategist parks every call until release is closed.
type blockingStrategist struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingStrategist) Brainstorm(ctx context.Context, req StrategyRequest) (*domain.Strategy, error) {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return &domain.Strategy{Caption: "late", Hashtags: []string{"#late"}, CreativeReasoning: "r"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestBeginBatchMarksRunningBeforeWork(t *testing.T) {
	st := &scriptedStrategist{}
	s := newTestSession(st, &scriptedRenderer{})

	run, err := s.BeginBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}})
	if err != nil || run == nil {
		t.Fatalf("BeginBatch = %p, %v", run, err)
	}
	if !s.Status().Loading {
		t.Fatal("loading must be set before the batch runs")
	}
	if _, err := s.BeginGenerate(context.Background()); !errors.Is(err, domain.ErrBatchRunning) {
		t.Errorf("second begin = %v, want ErrBatchRunning", err)
	}
	if st.callCount() != 0 {
		t.Errorf("work started early: %d calls", st.callCount())
	}

	if err := run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Status().Loading || len(s.Results()) != 1 {
		t.Errorf("after run: %+v results=%d", s.Status(), len(s.Results()))
	}
}

func TestDroppedEventsCounted(t *testing.T) {
	s := NewSession("sess-drop", &scriptedStrategist{}, &scriptedRenderer{}, WithClock(fixedClock), WithEventBuffer(1))
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square", "fb-post"}}); err != nil {
		t.Fatalf("StartBatch: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("buffered events = %d, want 1", len(events))
	}
	if s.DroppedEvents() == 0 {
		t.Error("expected dropped deliveries for a full subscriber")
	}
}

func TestStartBatchRejectsConcurrentRun(t *testing.T) {
	bs := &blockingStrategist{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := newTestSession(bs, &scriptedRenderer{})

	done := make(chan error, 1)
	go func() {
		done <- s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}})
	}()
	<-bs.started

	if !s.Status().Loading {
		t.Error("loading must be true while running")
	}
	err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"fb-post"}})
	if !errors.Is(err, domain.ErrBatchRunning) {
		t.Errorf("expected ErrBatchRunning, got %v", err)
	}
	if err := s.SetSource(payload("Z")); !errors.Is(err, domain.ErrBatchRunning) {
		t.Errorf("SetSource while running: expected ErrBatchRunning, got %v", err)
	}

	close(bs.release)
	if err := <-done; err != nil {
		t.Fatalf("first batch failed: %v", err)
	}
	if n := len(s.Results()); n != 1 {
		t.Errorf("expected 1 result, got %d", n)
	}
}

func TestResetDuringBatchDiscardsLateWork(t *testing.T) {
	bs := &blockingStrategist{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := newTestSession(bs, &scriptedRenderer{})

	done := make(chan error, 1)
	go func() {
		done <- s.StartBatch(context.Background(), BatchRequest{
			Source: payload("X"), PlatformIDs: []string{"ig-square"}, Theme: domain.ThemeDark,
		})
	}()
	<-bs.started

	s.Reset()

	if err := <-done; !errors.Is(err, ErrSessionReset) {
		t.Errorf("expected ErrSessionReset, got %v", err)
	}
	assertInitialState(t, s)
}

func TestReset(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	if err := s.StartBatch(context.Background(), BatchRequest{
		Source: payload("X"), PlatformIDs: []string{"ig-square", "fb-post"}, Brief: "b", Theme: domain.ThemeLight,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Reset()
	assertInitialState(t, s)

	// Reset on a fresh session is also fine.
	fresh := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	fresh.Reset()
	assertInitialState(t, fresh)
}

func assertInitialState(t *testing.T, s *Session) {
	t.Helper()
	snap := s.Snapshot()
	if snap.HasSource || s.Source() != nil {
		t.Error("source not cleared")
	}
	if len(snap.Selection) != 0 || len(snap.Results) != 0 {
		t.Errorf("selection/results not cleared: %+v", snap)
	}
	if snap.Brief != "" || snap.Theme != domain.ThemeOriginal {
		t.Errorf("brief/theme not reset: %q %q", snap.Brief, snap.Theme)
	}
	if snap.Status != (domain.GenerationStatus{}) {
		t.Errorf("status not reset: %+v", snap.Status)
	}
}

func TestRegenerateUnknownIDIsNoOp(t *testing.T) {
	st, r := &scriptedStrategist{}, &scriptedRenderer{}
	s := newTestSession(st, r)
	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Results()
	calls := st.callCount() + r.callCount()

	if err := s.Regenerate(context.Background(), "does-not-exist"); err != nil {
		t.Fatalf("unknown id must be a no-op, got %v", err)
	}
	if !reflect.DeepEqual(before, s.Results()) {
		t.Error("results changed")
	}
	if st.callCount()+r.callCount() != calls {
		t.Error("clients were called for an unknown id")
	}
}

func TestRegenerateSuccess(t *testing.T) {
	st := &scriptedStrategist{}
	r := &scriptedRenderer{}
	now := fixedClock()
	s := NewSession("sess", st, r, WithClock(func() time.Time { return now }))

	if err := s.StartBatch(context.Background(), BatchRequest{
		Source: payload("X"), PlatformIDs: []string{"ig-square", "pin-standard"}, Theme: domain.ThemeOriginal,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Results()
	target := before[0] // pin-standard, rendered last

	st.answer = func(call int, req StrategyRequest) (*domain.Strategy, error) {
		return &domain.Strategy{Caption: "new caption", Hashtags: []string{"#new"}, CreativeReasoning: "new reasoning"}, nil
	}
	s.SetTheme(domain.ThemeDark)
	s.SetBrief("moody")
	now = now.Add(5 * time.Second)

	if err := s.Regenerate(context.Background(), target.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after := s.Results()
	got := after[0]
	if got.ID != target.ID || got.IsRegenerating {
		t.Errorf("unexpected identity/flag: %+v", got)
	}
	if got.Caption != "new caption" || got.CreativeReasoning != "new reasoning" || got.Theme != domain.ThemeDark {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.ImageURL == target.ImageURL || got.Timestamp != now.UnixMilli() {
		t.Errorf("image/timestamp not updated: %+v", got)
	}
	if !reflect.DeepEqual(after[1], before[1]) {
		t.Error("other result was modified")
	}
	last := r.calls[len(r.calls)-1]
	if last.AspectRatio != domain.AspectPortrait || last.Brief != "moody" || last.Theme != domain.ThemeDark {
		t.Errorf("regeneration used wrong inputs: %+v", last)
	}
}

func TestRegenerateFlagAndFailure(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	if err := s.StartBatch(context.Background(), BatchRequest{
		Source: payload("X"), PlatformIDs: []string{"ig-square", "fb-post"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Results()
	target := before[0]
	statusBefore := s.Status()

	bs := &blockingStrategist{started: make(chan struct{}, 1), release: make(chan struct{})}
	s.strategist = bs
	s.renderer = &scriptedRenderer{answer: func(int, RenderRequest) (*domain.ImagePayload, error) {
		return nil, &domain.ServiceError{Service: "rendering", Op: "render", Err: domain.ErrNoImageInResponse}
	}}

	done := make(chan error, 1)
	go func() { done <- s.Regenerate(context.Background(), target.ID) }()
	<-bs.started

	during := s.Results()
	if !during[0].IsRegenerating {
		t.Error("target must be flagged while regenerating")
	}
	if !reflect.DeepEqual(during[1], before[1]) {
		t.Error("other result changed during regeneration")
	}
	if err := s.Regenerate(context.Background(), target.ID); !errors.Is(err, domain.ErrRegenerationInProgress) {
		t.Errorf("expected ErrRegenerationInProgress, got %v", err)
	}

	close(bs.release)
	if err := <-done; !errors.Is(err, domain.ErrNoImageInResponse) {
		t.Fatalf("expected render failure, got %v", err)
	}

	after := s.Results()
	if !reflect.DeepEqual(after, before) {
		t.Errorf("failed regeneration must restore prior content:\nbefore=%+v\nafter=%+v", before, after)
	}
	if s.Status() != statusBefore {
		t.Errorf("regeneration touched batch status: %+v", s.Status())
	}
}

func TestRegenerateWithoutSourceIsNoOp(t *testing.T) {
	st := &scriptedStrategist{}
	s := newTestSession(st, &scriptedRenderer{})
	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.ClearSource()
	calls := st.callCount()

	id := s.Results()[0].ID
	if err := s.Regenerate(context.Background(), id); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if st.callCount() != calls {
		t.Error("strategist called without a source image")
	}
}

func TestTogglePlatform(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	s.TogglePlatform("fb-post")
	original := s.Selection()

	for _, id := range []string{"ig-story", "fb-post"} {
		if _, err := s.TogglePlatform(id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
		if _, err := s.TogglePlatform(id); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
		if !reflect.DeepEqual(s.Selection(), original) {
			t.Errorf("toggling %s twice changed selection: %v -> %v", id, original, s.Selection())
		}
	}

	if _, err := s.TogglePlatform("friendster"); !errors.Is(err, domain.ErrPlatformNotFound) {
		t.Errorf("expected ErrPlatformNotFound, got %v", err)
	}

	s.SelectAll()
	if !reflect.DeepEqual(s.Selection(), domain.PlatformIDs()) {
		t.Errorf("SelectAll = %v", s.Selection())
	}
}

func TestSetSourceClearsResultsAndSelection(t *testing.T) {
	s := newTestSession(&scriptedStrategist{}, &scriptedRenderer{})
	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.SetSource(payload("new")); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	if len(s.Results()) != 0 || len(s.Selection()) != 0 {
		t.Error("new upload must clear results and selection")
	}
	if err := s.SetSource(nil); !errors.Is(err, domain.ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestGenerateUsesSessionInputs(t *testing.T) {
	st := &scriptedStrategist{}
	s := newTestSession(st, &scriptedRenderer{})
	if err := s.SetSource(payload("X")); err != nil {
		t.Fatalf("SetSource: %v", err)
	}
	s.TogglePlatform("yt-thumbnail")
	s.SetBrief("gaming")
	s.SetTheme(domain.ThemeLight)

	if err := s.Generate(context.Background()); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if st.callCount() != 1 || st.calls[0].Brief != "gaming" || st.calls[0].Theme != domain.ThemeLight {
		t.Errorf("unexpected strategy calls: %+v", st.calls)
	}
	if got := s.Results()[0].Theme; got != domain.ThemeLight {
		t.Errorf("result theme = %s", got)
	}
}

func TestSessionLogsWithOwnLogger(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(logger.Options{Level: "info", Format: "json", Output: &buf, ServiceName: "kit-test"})
	s := NewSession("sess-log", &scriptedStrategist{}, &scriptedRenderer{}, WithClock(fixedClock), WithLogger(l))

	if err := s.StartBatch(context.Background(), BatchRequest{Source: payload("X"), PlatformIDs: []string{"ig-square"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Batch started", "Batch completed", `"status":"completed"`, `"component":"orchestrator"`, `"session_id":"sess-log"`, `"platform_id":"ig-square"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
