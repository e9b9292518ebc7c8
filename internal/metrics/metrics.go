// SPDX-License-Identifier: MIT

// Package metrics exposes Prometheus collectors for the two pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playlistChannels = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tvh2g_playlist_channels",
		Help: "Number of channels in the last published playlist",
	})

	// Builds degrade on partial failure instead of failing, so there is no
	// outcome label here.
	playlistBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tvh2g_playlist_builds_total",
		Help: "Completed playlist build runs",
	})

	playlistBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tvh2g_playlist_build_duration_seconds",
		Help:    "Duration of playlist builds",
		Buckets: prometheus.DefBuckets,
	})

	fetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvh2g_fetch_failures_total",
		Help: "Backend fetch failures after retry exhaustion, by stage",
	}, []string{"stage"}) // stage=tags|tag_playlist|epg

	persistErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvh2g_persist_errors_total",
		Help: "Durable write failures by artifact",
	}, []string{"artifact"}) // artifact=playlist|epg

	epgMerges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tvh2g_epg_merges_total",
		Help: "EPG merge runs by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	epgMergeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tvh2g_epg_merge_duration_seconds",
		Help:    "Duration of EPG merges",
		Buckets: prometheus.DefBuckets,
	})

	epgProgrammes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tvh2g_epg_programmes",
		Help: "Distinct programmes in the retained EPG after the last merge",
	})

	// Validation findings; non-zero values indicate a merge-logic defect.
	epgValidation = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tvh2g_epg_validation_findings",
		Help: "EPG validation findings from the last merge, by kind",
	}, []string{"kind"}) // kind=duplicates|stale|orphans
)

func RecordPlaylistBuild(channels int, d time.Duration) {
	playlistBuilds.Inc()
	playlistChannels.Set(float64(channels))
	playlistBuildDuration.Observe(d.Seconds())
}

func RecordFetchFailure(stage string) {
	fetchFailures.WithLabelValues(stage).Inc()
}

func RecordPersistError(artifact string) {
	persistErrors.WithLabelValues(artifact).Inc()
}

func RecordEPGMerge(d time.Duration) {
	epgMerges.WithLabelValues("success").Inc()
	epgMergeDuration.Observe(d.Seconds())
}

func RecordEPGMergeFailure() {
	epgMerges.WithLabelValues("failure").Inc()
}

func RecordEPGValidation(programmes, duplicates, stale, orphans int) {
	epgProgrammes.Set(float64(programmes))
	epgValidation.WithLabelValues("duplicates").Set(float64(duplicates))
	epgValidation.WithLabelValues("stale").Set(float64(stale))
	epgValidation.WithLabelValues("orphans").Set(float64(orphans))
}
