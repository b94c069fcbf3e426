package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stories_logins_total",
		Help: "Total number of successful GitHub logins.",
	})

	storiesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stories_created_total",
		Help: "Total number of stories created.",
	})

	actionsAppendedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stories_actions_appended_total",
		Help: "Total number of player actions appended.",
	})

	gistSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stories_gist_syncs_total",
			Help: "Total number of gist sync attempts by resulting status.",
		},
		[]string{"status"},
	)

	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stories_generations_total",
			Help: "Total number of LLM generation calls by kind and status.",
		},
		[]string{"kind", "status"},
	)
)
