package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Signups = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sp", Name: "signups_total", Help: "Completed signups",
	})
	Logins = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sp", Name: "logins_total", Help: "Successful logins",
	})
	ScoreEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sp", Name: "score_entries_total", Help: "Appended score entries",
	})
	ProgressSyncFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sp", Name: "progress_sync_failures_total",
		Help: "Best-effort progress cache refreshes that failed after a score write",
	})
)

func init() {
	prometheus.MustRegister(Signups, Logins, ScoreEntries, ProgressSyncFailures)
}

func Handler() http.Handler { return promhttp.Handler() }
