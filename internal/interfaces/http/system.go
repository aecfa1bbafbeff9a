package http

import (
	"context"
	"net/http"
	"time"

	"finanzas/internal/domain/ledger"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HandleHealth returns a health check handler. A nil db always reports ok.
func HandleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CronHandler serves endpoints called by an external scheduler.
type CronHandler struct {
	ledger *ledger.Service
	now    func() time.Time
}

func NewCronHandler(ledger *ledger.Service) *CronHandler {
	return &CronHandler{ledger: ledger, now: time.Now}
}

// HandleRecurring processes the due rules of every user, one period each.
func (h *CronHandler) HandleRecurring(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	result, err := h.ledger.ProcessDueRecurringRules(r.Context(), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
