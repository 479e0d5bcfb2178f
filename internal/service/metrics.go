package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeline_tasks_created_total",
		Help: "Total number of submitted tasks.",
	})
	taskTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_task_transitions_total",
			Help: "Task status transitions by target status.",
		},
		[]string{"status"},
	)
	stageFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failures_total",
			Help: "Failed generation stages.",
		},
		[]string{"stage"},
	)
	duplicateTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_duplicate_triggers_total",
			Help: "Generation triggers ignored because the same stage was already in flight.",
		},
		[]string{"stage"},
	)
)
