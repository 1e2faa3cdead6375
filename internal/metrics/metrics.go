// ABOUTME: Prometheus counters for the message store engine
// ABOUTME: Registered on the default registry; exposing them is the host's concern

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Admitted counts messages admitted into the in-memory index.
	Admitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailstore_messages_admitted_total",
		Help: "Messages admitted into the in-memory index during startup validation.",
	})

	// Quarantined counts records routed to the quarantine file.
	Quarantined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailstore_records_quarantined_total",
		Help: "Records rejected during admission and written to quarantine.",
	})

	// Created counts messages accepted through the write path.
	Created = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mailstore_messages_created_total",
		Help: "Messages created through the write path.",
	})

	// FlagUpdates counts effective per-viewer visibility changes by flag.
	FlagUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mailstore_flag_updates_total",
		Help: "Per-viewer read/deleted flag updates that changed state.",
	}, []string{"flag"})
)
