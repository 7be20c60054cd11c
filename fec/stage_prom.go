package fec

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PromStageHook exports stage durations as a Prometheus histogram labelled
// by decoder name and stage. One PromStageHook may be shared by all lanes.
type PromStageHook struct {
	hist *prometheus.HistogramVec
}

// NewPromStageHook registers the stage histogram on reg.
func NewPromStageHook(reg prometheus.Registerer, namespace string) (*PromStageHook, error) {
	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "decoder",
		Name:      "stage_seconds",
		Help:      "Time spent in each decoder stage (load, decode, store).",
		Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 12),
	}, []string{"decoder", "stage"})
	if err := reg.Register(hist); err != nil {
		return nil, err
	}
	return &PromStageHook{hist: hist}, nil
}

// For returns a hook that records under the given decoder label.
func (p *PromStageHook) For(decoder string) StageHook {
	if p == nil {
		return nil
	}
	return promDecoderHook{hist: p.hist, decoder: decoder}
}

type promDecoderHook struct {
	hist    *prometheus.HistogramVec
	decoder string
}

func (h promDecoderHook) ObserveStage(s Stage, d time.Duration) {
	h.hist.WithLabelValues(h.decoder, s.String()).Observe(d.Seconds())
}
