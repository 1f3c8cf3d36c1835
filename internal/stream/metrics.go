package stream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shapestone/shape-csvstream/internal/tokenizer"
)

// Metrics instruments one or more Drivers. A nil *Metrics records nothing.
type Metrics struct {
	rows       prometheus.Counter
	bytes      prometheus.Counter
	grows      prometheus.Counter
	bufferSize prometheus.Gauge
	errors     *prometheus.CounterVec
}

// NewMetrics registers the driver metrics with r. A nil r creates
// unregistered collectors.
func NewMetrics(r prometheus.Registerer) *Metrics {
	return &Metrics{
		rows: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "csvstream_rows_total",
			Help: "Total number of rows parsed.",
		}),
		bytes: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "csvstream_bytes_total",
			Help: "Total number of input bytes consumed by parsed rows.",
		}),
		grows: promauto.With(r).NewCounter(prometheus.CounterOpts{
			Name: "csvstream_buffer_grows_total",
			Help: "Total number of times a stream buffer was enlarged.",
		}),
		bufferSize: promauto.With(r).NewGauge(prometheus.GaugeOpts{
			Name: "csvstream_buffer_size_bytes",
			Help: "Size of the most recently allocated stream buffer.",
		}),
		errors: promauto.With(r).NewCounterVec(prometheus.CounterOpts{
			Name: "csvstream_errors_total",
			Help: "Total number of parse failures by kind.",
		}, []string{"kind"}),
	}
}

func (m *Metrics) observeRow(n int) {
	if m == nil {
		return
	}
	m.rows.Inc()
	m.bytes.Add(float64(n))
}

func (m *Metrics) observeBuffer(size int, grown bool) {
	if m == nil {
		return
	}
	if grown {
		m.grows.Inc()
	}
	m.bufferSize.Set(float64(size))
}

func (m *Metrics) observeError(kind tokenizer.Kind) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind.String()).Inc()
}
