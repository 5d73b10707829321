package managers

import (
	"log/slog"
	"time"

	"github.com/uber-go/tally/v4"
)

// logReporter reports tally metrics as log records.
type logReporter struct {
	logger *slog.Logger
}

var _ tally.StatsReporter = logReporter{}

func (r logReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.logger.Info("metric", "type", "counter", "name", name, "tags", tags, "value", value)
}

func (r logReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.logger.Info("metric", "type", "gauge", "name", name, "tags", tags, "value", value)
}

func (r logReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.logger.Debug("metric", "type", "timer", "name", name, "tags", tags, "value", interval)
}

func (r logReporter) ReportHistogramValueSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound float64,
	bucketUpperBound float64,
	samples int64,
) {
	r.logger.Debug("metric", "type", "histogram", "name", name, "tags", tags,
		"lower", bucketLowerBound, "upper", bucketUpperBound, "samples", samples)
}

func (r logReporter) ReportHistogramDurationSamples(
	name string,
	tags map[string]string,
	buckets tally.Buckets,
	bucketLowerBound time.Duration,
	bucketUpperBound time.Duration,
	samples int64,
) {
	r.logger.Debug("metric", "type", "histogram", "name", name, "tags", tags,
		"lower", bucketLowerBound, "upper", bucketUpperBound, "samples", samples)
}

func (r logReporter) Capabilities() tally.Capabilities {
	return r
}

func (r logReporter) Reporting() bool {
	return true
}

func (r logReporter) Tagging() bool {
	return true
}

func (r logReporter) Flush() {}
