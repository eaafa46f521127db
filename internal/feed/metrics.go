package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Handler serves /health, /metrics (Prometheus text format) and
// /api/metrics (JSON).
func (p *Poller) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		m := p.Metrics()
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		counter(w, "covidash_polls_total", "Total polls", m.Polls)
		counter(w, "covidash_snapshots_stored_total", "Snapshots stored", m.Stored)
		counter(w, "covidash_polls_unchanged_total", "Polls that found no change", m.Unchanged)
		counter(w, "covidash_errors_total", "Failed polls", m.ErrorCount)
		fmt.Fprintf(w, "# HELP covidash_last_poll_timestamp_seconds Start of the last poll\n")
		fmt.Fprintf(w, "# TYPE covidash_last_poll_timestamp_seconds gauge\n")
		fmt.Fprintf(w, "covidash_last_poll_timestamp_seconds %d\n", m.LastPollUnix)
		fmt.Fprintf(w, "# HELP covidash_uptime_seconds Uptime in seconds\n")
		fmt.Fprintf(w, "# TYPE covidash_uptime_seconds gauge\n")
		fmt.Fprintf(w, "covidash_uptime_seconds %d\n", m.Uptime)
	})

	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p.Metrics())
	})

	return mux
}

func counter(w http.ResponseWriter, name, help string, v int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n", name, v)
}

func (p *Poller) serveMetrics(ctx context.Context) {
	defer p.wg.Done()

	server := &http.Server{
		Addr:    p.config.MetricsAddr,
		Handler: p.Handler(),
	}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	p.log.Info("metrics server listening", "url", "http://"+p.config.MetricsAddr+"/metrics")
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		p.log.Error("metrics server", "err", err)
	}
}
