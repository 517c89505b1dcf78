// Package metrics exports a report.MetricReport as Prometheus gauges, for
// node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1homsi/buildeval/internal/report"
)

const namespace = "buildeval"

// Metrics is a private registry holding the gauges of one run. Each run
// gets its own, so stale artifacts never linger in the export.
type Metrics struct {
	Registry *prometheus.Registry

	Similarity  *prometheus.GaugeVec
	NGram       *prometheus.GaugeVec
	MatchPct    *prometheus.GaugeVec
	DiffLines   *prometheus.GaugeVec
	Precision   *prometheus.GaugeVec
	Recall      *prometheus.GaugeVec
	F1          *prometheus.GaugeVec
	Missing     *prometheus.GaugeVec
	Extra       *prometheus.GaugeVec
	KeyDeps     *prometheus.GaugeVec
	Skipped     prometheus.Gauge
	LastRunTime prometheus.Gauge
}

func artifactGauge(subsystem, name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		[]string{"artifact"},
	)
}

func New() *Metrics {
	m := &Metrics{
		Registry:   prometheus.NewRegistry(),
		Similarity: artifactGauge("text", "similarity_ratio", "Character sequence similarity between golden and generated artifact"),
		NGram:      artifactGauge("text", "ngram_score", "Unigram/bigram precision of the generated artifact"),
		MatchPct:   artifactGauge("text", "match_percent", "Coarse line-diff match percentage"),
		DiffLines:  artifactGauge("text", "diff_lines", "Number of unified diff lines"),
		Precision:  artifactGauge("dependencies", "precision", "Dependency precision of the generated artifact"),
		Recall:     artifactGauge("dependencies", "recall", "Dependency recall of the generated artifact"),
		F1:         artifactGauge("dependencies", "f1", "Dependency F1 of the generated artifact"),
		Missing:    artifactGauge("dependencies", "missing", "Golden dependencies absent from the generated artifact"),
		Extra:      artifactGauge("dependencies", "extra", "Generated dependencies absent from the golden artifact"),
		KeyDeps:    artifactGauge("dependencies", "key_found_ratio", "Share of key dependencies mentioned in the generated artifact"),
		Skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_skipped",
			Help:      "Tracked artifacts that could not be read",
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Start time of the exported comparison run",
		}),
	}
	m.Registry.MustRegister(
		m.Similarity, m.NGram, m.MatchPct, m.DiffLines,
		m.Precision, m.Recall, m.F1, m.Missing, m.Extra, m.KeyDeps,
		m.Skipped, m.LastRunTime,
	)
	return m
}

// Record sets every gauge from r. Skipped artifacts only count towards
// artifacts_skipped.
func (m *Metrics) Record(r report.MetricReport) {
	skipped := 0
	for _, a := range r.Artifacts {
		if a.Skipped() {
			skipped++
			continue
		}
		m.Similarity.WithLabelValues(a.Path).Set(a.Similarity)
		m.NGram.WithLabelValues(a.Path).Set(a.NGram)
		m.MatchPct.WithLabelValues(a.Path).Set(a.Diff.MatchPct)
		m.DiffLines.WithLabelValues(a.Path).Set(float64(a.DiffLines))

		if d := a.Dependencies; d != nil {
			m.Precision.WithLabelValues(a.Path).Set(d.Precision)
			m.Recall.WithLabelValues(a.Path).Set(d.Recall)
			m.F1.WithLabelValues(a.Path).Set(d.F1)
			m.Missing.WithLabelValues(a.Path).Set(float64(d.Missing.Len()))
			m.Extra.WithLabelValues(a.Path).Set(float64(d.Extra.Len()))
		}
		if len(a.KeyDeps) > 0 {
			found := 0
			for _, k := range a.KeyDeps {
				if k.Found {
					found++
				}
			}
			m.KeyDeps.WithLabelValues(a.Path).Set(float64(found) / float64(len(a.KeyDeps)))
		}
	}
	m.Skipped.Set(float64(skipped))
	if !r.StartedAt.IsZero() {
		m.LastRunTime.Set(float64(r.StartedAt.Unix()))
	}
}

// WriteTextfile records r into a fresh registry and writes it to path in
// the text exposition format. The write is atomic.
func WriteTextfile(path string, r report.MetricReport) error {
	m := New()
	m.Record(r)
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
