// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TimelineReads counts timeline fetches per view (account, home, list,
	// public).
	TimelineReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rookery_timeline_reads_total",
		Help: "Timeline fetches served, by view.",
	}, []string{"view"})

	// CacheHits counts timeline cache lookups that returned IDs.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rookery_timeline_cache_hits_total",
		Help: "Timeline cache lookups that found an entry, by scope.",
	}, []string{"scope"})

	// CacheMisses counts lookups that fell back to the content store.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rookery_timeline_cache_misses_total",
		Help: "Timeline cache lookups that fell back to the store, by scope.",
	}, []string{"scope"})

	// NotificationReads counts notification page fetches.
	NotificationReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rookery_notification_reads_total",
		Help: "Notification pages served.",
	})

	// NotesFannedOut counts notes pushed into timeline caches on write.
	NotesFannedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rookery_notes_fanned_out_total",
		Help: "Cache entries populated by the note write path.",
	})
)
