package stats

import (
	"encoding/json"
	"net/http"

	"tin-dog/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /stats (público).
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/stats", statsHandler(svc))
}

// statsHandler godoc
// @Summary Estadísticas globales
// @Tags stats
// @Produce json
// @Success 200 {object} Stats
// @Router /api/stats [get]
func statsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Snapshot(r.Context())
		if err != nil {
			apperr.Write(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(st)
	}
}
