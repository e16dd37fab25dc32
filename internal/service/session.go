package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/timmy/socialkit/internal/domain"
	"github.com/timmy/socialkit/internal/logger"
)

// ErrSessionReset is returned by work that was discarded because Reset ran while it was in flight.
var ErrSessionReset = errors.New("session was reset")

// BatchRequest is the input of StartBatch.
type BatchRequest struct {
	Source      *domain.ImagePayload
	PlatformIDs []string
	Brief       string
	Theme       domain.Theme
}

// Snapshot is a consistent, caller-owned copy of the session state.
type Snapshot struct {
	ID        string                    `json:"id"`
	HasSource bool                      `json:"has_source"`
	Selection []string                  `json:"selection"`
	Brief     string                    `json:"brief"`
	Theme     domain.Theme              `json:"theme"`
	Status    domain.GenerationStatus   `json:"status"`
	Phase     domain.BatchPhase         `json:"phase"`
	Results   []*domain.GeneratedResult `json:"results"`
}

// SessionOption customizes a Session.
type SessionOption func(*Session)

// WithClock overrides the time source used for result ids and timestamps.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithLogger sets the logger used when the caller's context carries none.
func WithLogger(l *logger.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(n int) SessionOption {
	return func(s *Session) { s.events = newBroadcaster(n) }
}

// Session owns the state of one kit: source image, platform selection,
// generated results and batch status. All methods are safe for concurrent use.
type Session struct {
	id         string
	strategist Strategist
	renderer   Renderer
	now        func() time.Time
	events     *broadcaster
	log        *logger.Logger

	mu          sync.RWMutex
	source      *domain.ImagePayload
	selection   []string
	results     []*domain.GeneratedResult // newest first
	brief       string
	theme       domain.Theme
	status      domain.GenerationStatus
	epoch       uint64
	cancelBatch context.CancelFunc
	regenCancel map[string]context.CancelFunc
	lastActive  time.Time
}

// NewSession creates an idle session with empty collections.
func NewSession(id string, strategist Strategist, renderer Renderer, opts ...SessionOption) *Session {
	s := &Session{
		id:          id,
		strategist:  strategist,
		renderer:    renderer,
		now:         time.Now,
		theme:       domain.ThemeOriginal,
		regenCancel: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = newBroadcaster(0)
	}
	s.lastActive = s.now()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Subscribe registers an event listener. The returned func unsubscribes and closes the channel.
// Events are dropped for subscribers whose buffer is full.
func (s *Session) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

func (s *Session) publish(ctx context.Context, e Event) {
	e.SessionID = s.id
	if missed := s.events.publish(e); missed > 0 {
		logger.CtxWarn(ctx, "Dropped %s event for %d slow subscriber(s)", e.Type, missed)
	}
}

func (s *Session) logContext(ctx context.Context) context.Context {
	if s.log != nil && !logger.Attached(ctx) {
		ctx = s.log.WithContext(ctx)
	}
	return logger.SetComponent(logger.SetSessionID(ctx, s.id), "orchestrator")
}

// ============================================
// Inputs
// ============================================

// SetSource installs a new source image. Like a fresh upload it clears results
// and selection. Rejected while a batch is running.
func (s *Session) SetSource(img *domain.ImagePayload) error {
	if img.Empty() {
		return fmt.Errorf("set source: %w", domain.ErrInvalidImage)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Loading {
		return domain.ErrBatchRunning
	}
	s.source = img.Clone()
	s.results = nil
	s.selection = nil
	s.touchLocked()
	return nil
}

// ClearSource drops the source image and keeps existing results.
func (s *Session) ClearSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = nil
	s.touchLocked()
}

// Source returns a copy of the current source image, or nil.
func (s *Session) Source() *domain.ImagePayload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source.Clone()
}

func (s *Session) SetBrief(brief string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brief = brief
	s.touchLocked()
}

func (s *Session) SetTheme(theme domain.Theme) {
	if theme == "" {
		theme = domain.ThemeOriginal
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = theme
	s.touchLocked()
}

// TogglePlatform adds id to the selection or removes it if present.
// Returns whether id is selected afterwards.
func (s *Session) TogglePlatform(id string) (bool, error) {
	if _, err := domain.FindPlatform(id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	for i, sel := range s.selection {
		if sel == id {
			s.selection = append(s.selection[:i:i], s.selection[i+1:]...)
			return false, nil
		}
	}
	s.selection = append(s.selection, id)
	return true, nil
}

// SelectAll selects every catalog platform in catalog order.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = domain.PlatformIDs()
	s.touchLocked()
}

func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.touchLocked()
}

// Selection returns the selected ids in selection order.
func (s *Session) Selection() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selection...)
}

// ============================================
// Readers
// ============================================

func (s *Session) Status() domain.GenerationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Results returns deep copies of the results, newest first.
func (s *Session) Results() []*domain.GeneratedResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultsLocked()
}

// Result returns a copy of one result.
func (s *Session) Result(id string) (*domain.GeneratedResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r := s.findLocked(id); r != nil {
		return r.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrResultNotFound, id)
}

func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Snapshot{
		ID:        s.id,
		HasSource: !s.source.Empty(),
		Selection: append([]string{}, s.selection...),
		Brief:     s.brief,
		Theme:     s.theme,
		Status:    s.status,
		Phase:     s.status.Phase(),
		Results:   s.resultsLocked(),
	}
}

// DroppedEvents reports how many event deliveries were skipped for slow subscribers.
func (s *Session) DroppedEvents() int {
	return s.events.droppedEvents()
}

// LastActive reports the last time the session was used.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) resultsLocked() []*domain.GeneratedResult {
	out := make([]*domain.GeneratedResult, len(s.results))
	for i, r := range s.results {
		out[i] = r.Clone()
	}
	return out
}

func (s *Session) findLocked(id string) *domain.GeneratedResult {
	for _, r := range s.results {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (s *Session) touchLocked() {
	s.lastActive = s.now()
}

// ============================================
// Batch
// ============================================

// Generate runs a batch with the session's current source, selection, brief and theme.
func (s *Session) Generate(ctx context.Context) error {
	run, err := s.BeginGenerate(ctx)
	if err != nil || run == nil {
		return err
	}
	return run()
}

// BeginGenerate is BeginBatch with the session's current inputs.
func (s *Session) BeginGenerate(ctx context.Context) (func() error, error) {
	s.mu.RLock()
	req := BatchRequest{
		Source:      s.source,
		PlatformIDs: append([]string(nil), s.selection...),
		Brief:       s.brief,
		Theme:       s.theme,
	}
	s.mu.RUnlock()
	return s.BeginBatch(ctx, req)
}

// StartBatch renders req.Source for every platform in req.PlatformIDs, in that
// order, one at a time. Each finished result is prepended to the result list and
// progress is published after every item.
//
// An empty source or selection is ignored. A second call while a batch is running
// returns domain.ErrBatchRunning. The first failing item aborts the batch; results
// completed before it are kept and the error is both recorded in Status and returned.
func (s *Session) StartBatch(ctx context.Context, req BatchRequest) error {
	run, err := s.BeginBatch(ctx, req)
	if err != nil || run == nil {
		return err
	}
	return run()
}

// BeginBatch switches the session to running and returns the function that
// processes the batch. The session is running once BeginBatch returns, so callers
// can run the batch in the background and still reject overlapping requests.
// run is nil for a no-op request; otherwise it must be called exactly once.
func (s *Session) BeginBatch(ctx context.Context, req BatchRequest) (run func() error, err error) {
	if req.Source.Empty() || len(req.PlatformIDs) == 0 {
		return nil, nil
	}
	theme := req.Theme
	if theme == "" {
		theme = domain.ThemeOriginal
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Loading {
		return nil, domain.ErrBatchRunning
	}
	s.source = req.Source.Clone()
	s.selection = dedupe(req.PlatformIDs)
	s.brief = req.Brief
	s.theme = theme
	s.status = domain.GenerationStatus{Loading: true}
	s.touchLocked()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancelBatch = cancel
	b := batch{
		epoch:  s.epoch,
		src:    s.source,
		ids:    append([]string(nil), s.selection...),
		brief:  req.Brief,
		theme:  theme,
		status: s.status,
	}
	return func() error {
		defer cancel()
		return s.runBatch(runCtx, b)
	}, nil
}

// batch is the input captured by BeginBatch.
type batch struct {
	epoch  uint64
	src    *domain.ImagePayload
	ids    []string
	brief  string
	theme  domain.Theme
	status domain.GenerationStatus
}

func (s *Session) runBatch(runCtx context.Context, b batch) error {
	epoch, src, ids, theme, status := b.epoch, b.src, b.ids, b.theme, b.status

	runCtx = s.logContext(runCtx)
	start := time.Now()
	logger.CtxInfo(runCtx, "Batch started: platforms=%d theme=%s", len(ids), theme)
	s.publish(runCtx, Event{Type: EventBatchStarted, Status: status})

	for i, pid := range ids {
		itemCtx := logger.WithField(runCtx, logger.FieldPlatformID, pid)

		platform, err := domain.FindPlatform(pid)
		if err != nil {
			return s.failBatch(itemCtx, epoch, err)
		}

		strategy, img, err := s.pipeline(itemCtx, platform, src, b.brief, theme)
		if err != nil {
			return s.failBatch(itemCtx, epoch, err)
		}

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return ErrSessionReset
		}
		result := s.newResultLocked(platform, strategy, img, theme)
		s.results = append([]*domain.GeneratedResult{result}, s.results...)
		s.status.Progress = domain.BatchProgress(i+1, len(ids))
		status = s.status
		snapshot := result.Clone()
		s.mu.Unlock()

		logger.With(logger.Fields{logger.FieldProgress: status.Progress}).
			Info(itemCtx, "Platform rendered: result_id=%s fallback=%t", result.ID, strategy.Fallback)
		s.publish(itemCtx, Event{Type: EventItemCompleted, Status: status, Result: snapshot, ResultID: snapshot.ID})
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionReset
	}
	s.status.Loading = false
	s.cancelBatch = nil
	status = s.status
	s.mu.Unlock()

	logger.With(logger.Fields{logger.FieldCount: len(ids)}).WithDuration(start).WithStatus("completed").
		Info(runCtx, "Batch completed")
	s.publish(runCtx, Event{Type: EventBatchCompleted, Status: status})
	return nil
}

// failBatch records err as the batch outcome unless the session was reset meanwhile.
func (s *Session) failBatch(ctx context.Context, epoch uint64, err error) error {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionReset
	}
	msg := err.Error()
	if msg == "" {
		msg = "An error occurred during generation."
	}
	s.status = domain.GenerationStatus{Loading: false, Error: msg, Progress: 0}
	s.cancelBatch = nil
	status := s.status
	s.mu.Unlock()

	logger.With(logger.Fields{"error": msg}).WithStatus("failed").Error(ctx, "Batch aborted")
	s.publish(ctx, Event{Type: EventBatchFailed, Status: status, Error: msg})
	return err
}

// pipeline runs the strategy phase then the rendering phase for one platform.
func (s *Session) pipeline(ctx context.Context, platform domain.PlatformTarget, src *domain.ImagePayload, brief string, theme domain.Theme) (*domain.Strategy, *domain.ImagePayload, error) {
	strategy, err := s.strategist.Brainstorm(ctx, StrategyRequest{
		Image:        src,
		PlatformName: platform.Name,
		PostType:     platform.PostType,
		Brief:        brief,
		Theme:        theme,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("strategy for %s: %w", platform.ID, err)
	}
	if strategy == nil {
		strategy = FallbackStrategy(platform.Name)
	}

	img, err := s.renderer.Render(ctx, RenderRequest{
		Image:             src,
		PlatformName:      platform.Name,
		PostType:          platform.PostType,
		AspectRatio:       platform.AspectRatio,
		CreativeReasoning: strategy.CreativeReasoning,
		Theme:             theme,
		Brief:             brief,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("render for %s: %w", platform.ID, err)
	}
	if img.Empty() {
		return nil, nil, fmt.Errorf("render for %s: %w", platform.ID, domain.ErrNoImageInResponse)
	}
	return strategy, img, nil
}

func (s *Session) newResultLocked(platform domain.PlatformTarget, strategy *domain.Strategy, img *domain.ImagePayload, theme domain.Theme) *domain.GeneratedResult {
	ts := s.now().UnixMilli()
	return &domain.GeneratedResult{
		ID:                s.uniqueIDLocked(platform.ID, ts),
		Platform:          platform,
		ImageURL:          img.DataURL(),
		Caption:           strategy.Caption,
		Hashtags:          append([]string(nil), strategy.Hashtags...),
		CreativeReasoning: strategy.CreativeReasoning,
		Theme:             theme,
		Timestamp:         ts,
	}
}

// uniqueIDLocked returns "<platformId>-<millis>", suffixed "-2", "-3"... on collision.
func (s *Session) uniqueIDLocked(platformID string, ts int64) string {
	base := platformID + "-" + strconv.FormatInt(ts, 10)
	id := base
	for n := 2; s.findLocked(id) != nil; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	return id
}

// ============================================
// Regeneration
// ============================================

// Regenerate re-runs both phases for one existing result using its platform and
// the session's current brief and theme. Unknown ids and a missing source image are
// no-ops. Only the targeted result changes; batch status is never touched. On
// failure the result keeps its previous content and the error is returned.
func (s *Session) Regenerate(ctx context.Context, resultID string) error {
	s.mu.Lock()
	r := s.findLocked(resultID)
	if r == nil || s.source.Empty() {
		s.mu.Unlock()
		return nil
	}
	if r.IsRegenerating {
		s.mu.Unlock()
		return domain.ErrRegenerationInProgress
	}
	r.IsRegenerating = true
	platform := r.Platform
	src := s.source
	brief, theme := s.brief, s.theme
	epoch := s.epoch
	status := s.status
	s.touchLocked()

	regenCtx, cancel := context.WithCancel(ctx)
	s.regenCancel[resultID] = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.regenCancel, resultID)
		s.mu.Unlock()
	}()

	regenCtx = logger.WithFields(s.logContext(regenCtx), logger.Fields{
		logger.FieldResultID:   resultID,
		logger.FieldPlatformID: platform.ID,
	})
	s.publish(regenCtx, Event{Type: EventRegenerateStarted, Status: status, ResultID: resultID})

	strategy, img, err := s.pipeline(regenCtx, platform, src, brief, theme)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionReset
	}
	target := s.findLocked(resultID)
	if target == nil {
		s.mu.Unlock()
		return fmt.Errorf("regenerate %s: %w", resultID, domain.ErrResultNotFound)
	}
	status = s.status
	if err != nil {
		target.IsRegenerating = false
		s.mu.Unlock()

		logger.FromContext(regenCtx).WithError(err).Warn("Regeneration failed")
		s.publish(regenCtx, Event{Type: EventRegenerateFailed, Status: status, ResultID: resultID, Error: err.Error()})
		return fmt.Errorf("regenerate %s: %w", resultID, err)
	}

	target.ImageURL = img.DataURL()
	target.Caption = strategy.Caption
	target.Hashtags = append([]string(nil), strategy.Hashtags...)
	target.CreativeReasoning = strategy.CreativeReasoning
	target.Theme = theme
	target.Timestamp = s.now().UnixMilli()
	target.IsRegenerating = false
	snapshot := target.Clone()
	s.mu.Unlock()

	logger.CtxInfo(regenCtx, "Result regenerated")
	s.publish(regenCtx, Event{Type: EventRegenerateCompleted, Status: status, Result: snapshot, ResultID: resultID})
	return nil
}

// ============================================
// Reset
// ============================================

// Reset returns the session to its initial state. In-flight batch and
// regeneration calls are cancelled and anything they finish afterwards is discarded.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.cancelBatch != nil {
		s.cancelBatch()
		s.cancelBatch = nil
	}
	for id, cancel := range s.regenCancel {
		cancel()
		delete(s.regenCancel, id)
	}
	s.epoch++
	s.source = nil
	s.selection = nil
	s.results = nil
	s.brief = ""
	s.theme = domain.ThemeOriginal
	s.status = domain.GenerationStatus{}
	s.touchLocked()
	status := s.status
	s.mu.Unlock()

	ctx := s.logContext(context.Background())
	logger.CtxInfo(ctx, "Session reset")
	s.publish(ctx, Event{Type: EventReset, Status: status})
}

// Close resets the session and closes every subscriber channel.
func (s *Session) Close() {
	s.Reset()
	s.events.closeAll()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
