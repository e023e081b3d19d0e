package detect

import (
	"sync"
	"time"

	"github.com/SmitBdangar/Morph1x/internal/timeutil"
)

// DefaultAlertCooldown is the minimum gap between two alerts for the same
// class.
const DefaultAlertCooldown = time.Second

// Alert is a single presence notification for a tracked detection.
type Alert struct {
	Class    string    `json:"class"`
	Identity int64     `json:"identity"`
	At       time.Time `json:"at"`
}

// AlertMonitor rate-limits presence alerts per class. Downstream sinks
// (audio, notifications) fire too often if every frame re-announces every
// visible object, so each class alerts at most once per cooldown window.
type AlertMonitor struct {
	mu        sync.Mutex
	cooldown  time.Duration
	clock     timeutil.Clock
	lastAlert map[string]time.Time
}

// NewAlertMonitor creates a monitor with the given cooldown. A cooldown
// <= 0 falls back to DefaultAlertCooldown; a nil clock falls back to the
// real clock.
func NewAlertMonitor(cooldown time.Duration, clock timeutil.Clock) *AlertMonitor {
	if cooldown <= 0 {
		cooldown = DefaultAlertCooldown
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &AlertMonitor{
		cooldown:  cooldown,
		clock:     clock,
		lastAlert: make(map[string]time.Time),
	}
}

// Observe inspects one frame's tracked detections and returns the alerts
// due now. For each class present, at most one alert is emitted per
// cooldown window, carrying the first detection seen for that class this
// frame.
func (m *AlertMonitor) Observe(detections []TrackedDetection) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var alerts []Alert
	for _, d := range detections {
		last, seen := m.lastAlert[d.Class]
		if seen && now.Sub(last) < m.cooldown {
			continue
		}
		m.lastAlert[d.Class] = now
		alerts = append(alerts, Alert{
			Class:    d.Class,
			Identity: d.Identity,
			At:       now,
		})
	}
	return alerts
}

// Reset forgets all cooldown history so the next observation of any class
// alerts immediately.
func (m *AlertMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAlert = make(map[string]time.Time)
}
