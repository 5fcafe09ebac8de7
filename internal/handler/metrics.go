package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_manager_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	refreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_manager_refreshes_total",
		Help: "Total number of successful token refreshes.",
	})

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_manager_token_verifications_total",
			Help: "Total number of token verification attempts by type and status.",
		},
		[]string{"type", "status"},
	)

	promptOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_manager_prompt_operations_total",
			Help: "Total number of successful prompt mutations by operation.",
		},
		[]string{"operation"},
	)

	importedPromptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prompt_manager_imported_prompts_total",
			Help: "Total number of imported prompt records by result.",
		},
		[]string{"result"},
	)

	exportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_manager_exports_total",
		Help: "Total number of prompt exports.",
	})

	accountPurgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prompt_manager_account_purges_total",
		Help: "Total number of account data deletions.",
	})
)
