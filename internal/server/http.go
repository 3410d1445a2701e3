package server

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/muurk/econet/internal/logging"
)

// NewMux wires the exporter endpoints:
//
//	/metrics  Prometheus exposition
//	/health   liveness, always "OK"
//	/params   last snapshot as JSON (503 before the first successful poll)
//	/ws       websocket snapshot stream
func NewMux(poller *Poller, metrics *MetricsCollector, hub *Hub) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/params", paramsHandler(poller))
	mux.Handle("/ws", hub)
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		logging.Debug("Failed to write health response", zap.Error(err))
	}
}

func paramsHandler(poller *Poller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snap, ok := poller.Last()
		if !ok {
			http.Error(w, "no successful poll yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			logging.Debug("Failed to write params response", zap.Error(err))
		}
	}
}
