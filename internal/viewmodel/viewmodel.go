// Package viewmodel owns the view-projection state machine: it runs the
// IndexLoader on its triggers (start, focus-gained, explicit refresh, and
// a suppressed timer poll), tracks a ConsecutiveFailures counter the same
// shape as a retry backoff state, and suspends timer polling once that
// counter reaches the threshold.
package viewmodel

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/codecomfy/nextgallery/internal/galleryfs"
	"github.com/codecomfy/nextgallery/internal/galleryindex"
	"github.com/codecomfy/nextgallery/internal/gallerylog"
)

// PollInterval is the fixed timer cadence.
const PollInterval = 3 * time.Second

// BackoffThreshold is the number of consecutive bad loads that suspends
// timer polling until focus-gained or an explicit refresh.
const BackoffThreshold = 3

// WindowState is the narrow capability the poll loop needs to decide
// whether a timer tick is allowed to run at all.
type WindowState interface {
	IsVisible() bool
	IsFocused() bool
}

// Model is the ViewModel: it wraps one workspace's Load calls with the
// polling/backoff/last-write-time policy. All mutable state is guarded by
// mu; Load results are handed to Project as immutable values, keeping a
// clean split between the thread producing LoadResults and the thread
// mutating projection fields.
type Model struct {
	mu sync.Mutex

	root   string
	reader galleryfs.Reader
	window WindowState

	lastKnownGood      []galleryindex.JobRow
	lastIndexModTime   time.Time
	consecutiveFailure int
	backedOff          bool

	current   galleryindex.LoadResult
	onProject func(galleryindex.LoadResult)

	pollInterval     time.Duration
	backoffThreshold int
}

// Config overrides the fixed defaults for poll cadence and backoff
// threshold; the CLI exposes both as flags.
type Config struct {
	PollInterval     time.Duration
	BackoffThreshold int
}

// DefaultConfig returns the standard poll/backoff defaults.
func DefaultConfig() Config {
	return Config{PollInterval: PollInterval, BackoffThreshold: BackoffThreshold}
}

// New constructs a Model for one workspace root using the standard defaults.
func New(root string, reader galleryfs.Reader, window WindowState, onProject func(galleryindex.LoadResult)) *Model {
	return NewWithConfig(root, reader, window, onProject, DefaultConfig())
}

// NewWithConfig constructs a Model with an overridden poll cadence/backoff
// threshold.
func NewWithConfig(root string, reader galleryfs.Reader, window WindowState, onProject func(galleryindex.LoadResult), cfg Config) *Model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = PollInterval
	}
	if cfg.BackoffThreshold <= 0 {
		cfg.BackoffThreshold = BackoffThreshold
	}
	return &Model{
		root: root, reader: reader, window: window, onProject: onProject,
		pollInterval: cfg.PollInterval, backoffThreshold: cfg.BackoffThreshold,
	}
}

// Current returns the most recently projected LoadResult.
func (m *Model) Current() galleryindex.LoadResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Start performs the initial, unconditional load.
func (m *Model) Start(ctx context.Context) {
	m.reload(ctx)
}

// FocusGained always reloads and resets the failure counter, resuming timer
// polling if it had been suspended.
func (m *Model) FocusGained(ctx context.Context) {
	m.mu.Lock()
	m.consecutiveFailure = 0
	m.backedOff = false
	m.mu.Unlock()
	m.reload(ctx)
}

// ExplicitRefresh always reloads and resets the failure counter, exactly
// like FocusGained.
func (m *Model) ExplicitRefresh(ctx context.Context) {
	m.FocusGained(ctx)
}

// Tick is one timer-poll opportunity. It is a no-op unless the window is
// visible/focused, the poll loop isn't backed off, and the index file's
// last-write-time has advanced since the last successful poll.
func (m *Model) Tick(ctx context.Context) {
	if m.window != nil && (!m.window.IsVisible() || !m.window.IsFocused()) {
		return
	}

	m.mu.Lock()
	backedOff := m.backedOff
	lastModTime := m.lastIndexModTime
	m.mu.Unlock()
	if backedOff {
		return
	}

	modTime, err := m.reader.ModTime(indexPath(m.root))
	if err == nil && !modTime.After(lastModTime) {
		return
	}

	m.reload(ctx)
}

// RunPollLoop runs Tick every poll interval until ctx is cancelled, the
// background-scheduler posture.
func (m *Model) RunPollLoop(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

func (m *Model) reload(ctx context.Context) {
	log := gallerylog.FromContext(ctx)

	m.mu.Lock()
	lkg := m.lastKnownGood
	m.mu.Unlock()

	result := galleryindex.Load(ctx, m.root, m.reader, lkg)

	m.mu.Lock()
	m.current = result
	if result.LastKnownGood != nil {
		m.lastKnownGood = result.LastKnownGood
	}
	if modTime, err := m.reader.ModTime(indexPath(m.root)); err == nil {
		m.lastIndexModTime = modTime
	}

	if result.Banner.Severity == galleryindex.SeverityWarning {
		m.consecutiveFailure++
		log.Warn("viewmodel: load reported a warning banner", "consecutive_failures", m.consecutiveFailure, "message", result.Banner.Message)
	} else {
		m.consecutiveFailure = 0
		m.backedOff = false
	}
	if m.consecutiveFailure >= m.backoffThreshold && !m.backedOff {
		m.backedOff = true
		log.Log(ctx, gallerylog.LevelNotice, "viewmodel: suspending timer polling after consecutive bad loads", "consecutive_failures", m.consecutiveFailure)
	}
	onProject := m.onProject
	m.mu.Unlock()

	if onProject != nil {
		onProject(result)
	}
}

func indexPath(root string) string {
	return filepath.Join(root, galleryindex.IndexRelativePath)
}
