// Package telemetry periodically writes fontsound device statistics to a
// time-series sink.
package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// Measurement is the point name written for each report.
const Measurement = "fontsound_stats"

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 15 * time.Second

// PointWriter accepts one time-series point. *influxdb.Client implements it.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, ts time.Time)
}

// StatsSource reports the current population of a device.
type StatsSource interface {
	Name() string
	Stats() fontsound.Stats
}

// Logger is the logging surface used by the reporter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// Reporter samples a device on a fixed interval.
type Reporter struct {
	source   StatsSource
	writer   PointWriter
	interval time.Duration
	logger   Logger
	now      func() time.Time
}

// NewReporter creates a reporter. It does not start until Run is called.
func NewReporter(source StatsSource, writer PointWriter, interval time.Duration) (*Reporter, error) {
	if source == nil || writer == nil {
		return nil, errors.New("telemetry: source and writer are required")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		source:   source,
		writer:   writer,
		interval: interval,
		now:      time.Now,
	}, nil
}

// SetLogger sets the logger for start/stop messages.
func (r *Reporter) SetLogger(logger Logger) {
	r.logger = logger
}

// Interval returns the sampling interval.
func (r *Reporter) Interval() time.Duration {
	return r.interval
}

// Run writes one report immediately and then one per interval until ctx is
// cancelled. It always returns nil.
func (r *Reporter) Run(ctx context.Context) error {
	if r.logger != nil {
		r.logger.Info("telemetry reporter started", "interval", r.interval)
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Report()
	for {
		select {
		case <-ctx.Done():
			if r.logger != nil {
				r.logger.Info("telemetry reporter stopped")
			}
			return nil
		case <-ticker.C:
			r.Report()
		}
	}
}

// Report writes the current statistics as one point.
func (r *Reporter) Report() {
	st := r.source.Stats()
	r.writer.WritePoint(Measurement,
		map[string]string{"device": r.source.Name()},
		map[string]any{
			"live":               int64(st.Live),
			"referenced":         int64(st.Referenced),
			"linked":             int64(st.Linked),
			"identifiers_in_use": int64(st.IdentifiersInUse),
		},
		r.now(),
	)
	if r.logger != nil {
		r.logger.Debug("telemetry point written", "live", st.Live)
	}
}
