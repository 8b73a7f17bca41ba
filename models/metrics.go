package models

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sheetRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drcm_sheet_requests_total",
		Help: "Remote spreadsheet calls by operation and result.",
	}, []string{"op", "result"})

	snapshotCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drcm_snapshot_cache_total",
		Help: "Snapshot cache lookups by result (hit/miss).",
	}, []string{"result"})

	savesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drcm_saves_total",
		Help: "Pass-date saves by final state.",
	}, []string{"state"})

	auditFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drcm_audit_failures_total",
		Help: "Audit appends that failed, by sink.",
	}, []string{"sink"})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
