package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	UploadsAccepted prometheus.Counter
	UploadsRejected *prometheus.CounterVec
	Downloads       prometheus.Counter
	UploadSizeBytes prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		UploadsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sftgate_uploads_accepted_total",
			Help: "Total number of uploads admitted into storage",
		}),
		UploadsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sftgate_uploads_rejected_total",
			Help: "Total number of rejected uploads by reason code",
		}, []string{"reason"}),
		Downloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sftgate_downloads_total",
			Help: "Total number of file downloads served",
		}),
		UploadSizeBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sftgate_upload_size_bytes",
			Help:    "Size distribution of accepted uploads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
	}
}

func (m *Metrics) IncrementAccepted(size int64) {
	m.UploadsAccepted.Inc()
	m.UploadSizeBytes.Observe(float64(size))
}

func (m *Metrics) IncrementRejected(reason string) {
	m.UploadsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementDownloads() {
	m.Downloads.Inc()
}
