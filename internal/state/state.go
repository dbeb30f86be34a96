// Package state provides thread-safe ownership of the chart's view: the
// current ViewState, projection, frame and observation time.
package state

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Astrarium/Astrarium-sub009/internal/astro"
	"github.com/Astrarium/Astrarium-sub009/internal/chart"
	"github.com/Astrarium/Astrarium-sub009/internal/projection"
)

// Field of view limits enforced on every change.
const (
	MinFieldOfView = 0.5
	MaxFieldOfView = 360.0
)

// ErrInvalidZoom is returned for zoom factors that are not finite and positive.
var ErrInvalidZoom = errors.New("zoom factor must be positive and finite")

// EventType represents the type of view change.
type EventType string

const (
	EventPan        EventType = "PAN"
	EventZoom       EventType = "ZOOM"
	EventRecenter   EventType = "RECENTER"
	EventResize     EventType = "RESIZE"
	EventProjection EventType = "PROJECTION"
	EventFrame      EventType = "FRAME"
	EventBack       EventType = "BACK"
)

// Event records one view change.
type Event struct {
	Type      EventType            `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	View      projection.ViewState `json:"view"`
}

// Manager owns the view and hands out immutable snapshots of it.
type Manager struct {
	mu sync.RWMutex

	view     projection.ViewState
	kind     projection.Kind
	frame    chart.Frame
	observer astro.Observer
	obsTime  time.Time
	follow   bool

	// Previous views for Back, oldest first
	history       []projection.ViewState
	maxHistoryLen int

	// Event log (ring buffer)
	events       []Event
	maxEvents    int
	eventWriteAt int

	refreshInterval time.Duration
	log             *zap.Logger
}

// Config holds configuration for the state manager.
type Config struct {
	View        projection.ViewState
	Kind        projection.Kind
	Frame       chart.Frame
	Observer    astro.Observer
	Time        time.Time
	FollowClock bool // Tick advances the observation time

	MaxHistoryLen   int
	MaxEvents       int
	RefreshInterval time.Duration
	Logger          *zap.Logger
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		View: projection.ViewState{
			Center:      projection.SphericalPoint{Azimuth: 180, Altitude: 45},
			FieldOfView: 90,
			Width:       80,
			Height:      48,
		},
		Kind:            projection.KindSin,
		Frame:           chart.FrameHorizontal,
		Time:            time.Now().UTC(),
		FollowClock:     true,
		MaxHistoryLen:   32,
		MaxEvents:       50,
		RefreshInterval: time.Second,
	}
}

// NewManager creates a state manager. The initial view is clamped and must
// validate.
func NewManager(cfg Config) (*Manager, error) {
	view := clampView(cfg.View)
	if err := view.Validate(); err != nil {
		return nil, fmt.Errorf("initial view: %w", err)
	}

	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 50
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Manager{
		view:            view,
		kind:            cfg.Kind,
		frame:           cfg.Frame,
		observer:        cfg.Observer,
		obsTime:         cfg.Time,
		follow:          cfg.FollowClock,
		maxHistoryLen:   cfg.MaxHistoryLen,
		maxEvents:       maxEvents,
		events:          make([]Event, 0, maxEvents),
		refreshInterval: cfg.RefreshInterval,
		log:             log,
	}, nil
}

// clampView keeps the center on the sphere and the field of view in range.
func clampView(v projection.ViewState) projection.ViewState {
	v.Center.Azimuth = projection.NormalizeAzimuth(v.Center.Azimuth)
	v.Center.Altitude = math.Max(-90, math.Min(90, v.Center.Altitude))
	if !math.IsNaN(v.FieldOfView) {
		v.FieldOfView = math.Max(MinFieldOfView, math.Min(MaxFieldOfView, v.FieldOfView))
	}
	return v
}

// apply installs a new view. Callers hold the write lock.
func (m *Manager) apply(next projection.ViewState, ev EventType, remember bool) error {
	next = clampView(next)
	if err := next.Validate(); err != nil {
		return err
	}

	if remember && next != m.view {
		m.history = append(m.history, m.view)
		if len(m.history) > m.maxHistoryLen {
			m.history = m.history[1:]
		}
	}
	m.view = next
	m.addEvent(Event{Type: ev, Timestamp: time.Now(), View: next})

	m.log.Debug("view changed",
		zap.String("event", string(ev)),
		zap.Float64("az", next.Center.Azimuth),
		zap.Float64("alt", next.Center.Altitude),
		zap.Float64("fov", next.FieldOfView),
		zap.Float64("width", next.Width),
		zap.Float64("height", next.Height),
	)
	return nil
}

// addEvent adds an event to the ring buffer.
func (m *Manager) addEvent(e Event) {
	if len(m.events) < m.maxEvents {
		m.events = append(m.events, e)
	} else {
		m.events[m.eventWriteAt] = e
		m.eventWriteAt = (m.eventWriteAt + 1) % m.maxEvents
	}
}

// Pan moves the view center by the given offsets in degrees. Altitude stops
// at the poles.
func (m *Manager) Pan(dAz, dAlt float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.view
	next.Center.Azimuth += dAz
	next.Center.Altitude += dAlt
	return m.apply(next, EventPan, true)
}

// Zoom divides the field of view by factor; factor > 1 zooms in.
func (m *Manager) Zoom(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidZoom, factor)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.view
	next.FieldOfView /= factor
	return m.apply(next, EventZoom, true)
}

// CenterOn points the view at p.
func (m *Manager) CenterOn(p projection.SphericalPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.view
	next.Center = p
	return m.apply(next, EventRecenter, true)
}

// Resize changes the viewport size. It is not recorded in the history.
func (m *Manager) Resize(width, height float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.view
	next.Width, next.Height = width, height
	return m.apply(next, EventResize, false)
}

// SetKind switches the projection.
func (m *Manager) SetKind(k projection.Kind) error {
	if _, err := projection.New(k); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.kind = k
	m.addEvent(Event{Type: EventProjection, Timestamp: time.Now(), View: m.view})
	m.log.Debug("projection changed", zap.Stringer("kind", k))
	return nil
}

// SetFrame switches the coordinate frame, re-expressing the view center so
// the chart keeps looking at the same part of the sky. The history is
// cleared since earlier centers belong to the old frame.
func (m *Manager) SetFrame(f chart.Frame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f == m.frame {
		return nil
	}

	scene := chart.Scene{Frame: m.frame, Observer: m.observer, Time: m.obsTime}
	both := scene.FromFrame(m.view.Center)

	next := m.view
	if f == chart.FrameEquatorial {
		next.Center = projection.SphericalPoint{Azimuth: both.RAdeg, Altitude: both.DecDeg}
	} else {
		next.Center = projection.SphericalPoint{Azimuth: both.AzDeg, Altitude: both.ElDeg}
	}

	if err := m.apply(next, EventFrame, false); err != nil {
		return err
	}
	m.frame = f
	m.history = nil
	m.log.Debug("frame changed", zap.Stringer("frame", f))
	return nil
}

// SetTime pins the observation time and stops following the clock.
func (m *Manager) SetTime(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obsTime = t.UTC()
	m.follow = false
	m.log.Debug("time pinned", zap.Time("time", m.obsTime))
}

// Tick advances the observation time to now if the manager follows the
// clock. It reports whether the time changed.
func (m *Manager) Tick(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.follow {
		return false
	}
	m.obsTime = now.UTC()
	return true
}

// ResumeClock jumps to now and follows the clock again.
func (m *Manager) ResumeClock(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.obsTime = now.UTC()
	m.follow = true
}

// SetObserver moves the observing site.
func (m *Manager) SetObserver(o astro.Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = o
	m.log.Debug("observer changed",
		zap.String("name", o.Name),
		zap.Float64("lat", o.LatDeg),
		zap.Float64("lon", o.LonDeg),
	)
}

// Back restores the previous view. It reports false when there is none.
func (m *Manager) Back() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.history)
	if n == 0 {
		return false
	}

	prev := m.history[n-1]
	m.history = m.history[:n-1]

	// The viewport size is not part of the history
	prev.Width, prev.Height = m.view.Width, m.view.Height
	m.view = prev
	m.addEvent(Event{Type: EventBack, Timestamp: time.Now(), View: prev})
	m.log.Debug("view back", zap.Int("remaining", len(m.history)))
	return true
}

// Snapshot represents an immutable snapshot of current state.
type Snapshot struct {
	View        projection.ViewState
	Kind        projection.Kind
	Frame       chart.Frame
	Observer    astro.Observer
	Time        time.Time
	FollowClock bool
	HistoryLen  int
	Events      []Event
}

// Snapshot returns a consistent snapshot of current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return Snapshot{
		View:        m.view,
		Kind:        m.kind,
		Frame:       m.frame,
		Observer:    m.observer,
		Time:        m.obsTime,
		FollowClock: m.follow,
		HistoryLen:  len(m.history),
		Events:      m.getEventsOrdered(),
	}
}

// Scene builds the chart scene for the snapshot.
func (s Snapshot) Scene() chart.Scene {
	proj, err := projection.New(s.Kind)
	if err != nil {
		proj = projection.Sin{}
	}
	return chart.Scene{
		View:       s.View,
		Projection: proj,
		Frame:      s.Frame,
		Observer:   s.Observer,
		Time:       s.Time,
	}
}

// getEventsOrdered returns events in chronological order.
func (m *Manager) getEventsOrdered() []Event {
	if len(m.events) == 0 {
		return nil
	}

	// If buffer isn't full yet, just copy
	if len(m.events) < m.maxEvents {
		result := make([]Event, len(m.events))
		copy(result, m.events)
		return result
	}

	// Ring buffer is full, reorder from oldest to newest
	result := make([]Event, m.maxEvents)
	for i := 0; i < m.maxEvents; i++ {
		idx := (m.eventWriteAt + i) % m.maxEvents
		result[i] = m.events[idx]
	}
	return result
}

// RecentEvents returns the last n events, oldest first.
func (m *Manager) RecentEvents(n int) []Event {
	if n <= 0 {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	all := m.getEventsOrdered()
	if len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

// RefreshInterval returns the configured clock refresh interval.
func (m *Manager) RefreshInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refreshInterval
}

// SetRefreshInterval updates the clock refresh interval.
func (m *Manager) SetRefreshInterval(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshInterval = d
}
