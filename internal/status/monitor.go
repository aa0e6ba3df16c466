package status

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Probe checks one upstream dependency. A nil error means reachable.
type Probe func(ctx context.Context) error

// Report is the provider reachability view exposed on the health endpoint.
type Report struct {
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checkedAt"`
	LastError string    `json:"lastError,omitempty"`
}

// Monitor periodically probes the weather provider and keeps the latest
// result for the health endpoint. Probe results are status only; no
// provider responses are cached for serving queries.
type Monitor struct {
	scheduler *gocron.Scheduler
	probe     Probe
	interval  time.Duration

	mu     sync.RWMutex
	report Report
}

// New creates a Monitor. The probe runs once on Start and then on the
// given interval.
func New(probe Probe, interval time.Duration) *Monitor {
	return &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		probe:     probe,
		interval:  interval,
		report:    Report{Reachable: true}, // optimistic until first probe
	}
}

// Start schedules the periodic probe.
func (m *Monitor) Start() error {
	minutes := int(m.interval.Minutes())
	if minutes <= 0 {
		minutes = 5
	}

	_, err := m.scheduler.Every(minutes).Minutes().Do(m.runProbe)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	go m.runProbe()
	return nil
}

// Stop stops the scheduler and cancels any future probes.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// Current returns the latest reachability report.
func (m *Monitor) Current() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

func (m *Monitor) runProbe() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report := Report{Reachable: true, CheckedAt: time.Now().UTC()}
	if err := m.probe(ctx); err != nil {
		log.Printf("status: provider probe failed: %v", err)
		report.Reachable = false
		report.LastError = err.Error()
	}

	m.mu.Lock()
	m.report = report
	m.mu.Unlock()
}
