// Package sound schedules audio cues for board events. Cues carry a
// priority; a higher-priority cue stops lower ones already playing and
// briefly suppresses new lower-priority cues so jingles are not buried
// under coin blips.
package sound

import (
	"log/slog"
	"sync"
	"time"

	"github.com/boardscore/boardscore/internal/dependencies/clock"
)

// Priority orders cues; higher values win
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

// Suppression windows after a cue starts, keyed by its priority.
// During the window, cues of strictly lower priority are dropped.
const (
	highSuppression   = 500 * time.Millisecond
	mediumSuppression = 175 * time.Millisecond
)

// Playback is a handle to a cue in flight
type Playback interface {
	Stop()
}

// Output renders cues. Implementations range from a real audio device
// to a silent recorder in tests.
type Output interface {
	Play(cue Cue) Playback
}

// NopOutput discards every cue
type NopOutput struct{}

type nopPlayback struct{}

func (nopPlayback) Stop() {}

func (NopOutput) Play(Cue) Playback { return nopPlayback{} }

type active struct {
	cue       Cue
	playback  Playback
	startedAt time.Time
}

// Manager gates cues by an enabled flag and priority suppression
type Manager struct {
	output Output
	clock  clock.Clock
	logger *slog.Logger

	mu            sync.Mutex
	enabled       bool
	playing       []active
	suppressBelow Priority
	suppressUntil time.Time
}

// NewManager creates a Manager. Sound starts enabled.
func NewManager(output Output, clk clock.Clock, logger *slog.Logger) *Manager {
	return &Manager{
		output:  output,
		clock:   clk,
		logger:  logger.With(slog.String("component", "sound")),
		enabled: true,
	}
}

// SetEnabled toggles all sound output
func (m *Manager) SetEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enabled = enabled
}

// Enabled reports whether sound output is on
func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Play schedules a cue, applying the priority rules. It reports
// whether the cue was actually started.
func (m *Manager) Play(cue Cue) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return false
	}

	now := m.clock.Now()
	if cue.Priority < m.suppressBelow && now.Before(m.suppressUntil) {
		m.logger.Debug("cue suppressed", slog.String("cue", cue.Name))
		return false
	}

	m.reapLocked(now)

	// A higher-priority cue cuts off anything quieter still playing
	remaining := m.playing[:0]
	for _, a := range m.playing {
		if a.cue.Priority < cue.Priority {
			a.playback.Stop()
			continue
		}
		remaining = append(remaining, a)
	}
	m.playing = remaining

	switch cue.Priority {
	case PriorityHigh:
		m.suppressBelow = PriorityHigh
		m.suppressUntil = now.Add(highSuppression)
	case PriorityMedium:
		if !now.Before(m.suppressUntil) || m.suppressBelow < PriorityMedium {
			m.suppressBelow = PriorityMedium
			m.suppressUntil = now.Add(mediumSuppression)
		}
	}

	playback := m.output.Play(cue)
	m.playing = append(m.playing, active{cue: cue, playback: playback, startedAt: now})
	return true
}

// reapLocked drops cues that have finished on their own
func (m *Manager) reapLocked(now time.Time) {
	remaining := m.playing[:0]
	for _, a := range m.playing {
		if now.Before(a.startedAt.Add(a.cue.Duration())) {
			remaining = append(remaining, a)
		}
	}
	m.playing = remaining
}

// PlayCoin plays the score-increment cue
func (m *Manager) PlayCoin() { m.Play(CueCoin) }

// PlayLose plays the score-decrement cue
func (m *Manager) PlayLose() { m.Play(CueLose) }

// PlayNewPlayer plays the player-joined cue
func (m *Manager) PlayNewPlayer() { m.Play(CueNewPlayer) }

// PlayDelete plays the player-removed cue
func (m *Manager) PlayDelete() { m.Play(CueDelete) }

// PlayFanfare plays the leader-change cue
func (m *Manager) PlayFanfare() { m.Play(CueFanfare) }
