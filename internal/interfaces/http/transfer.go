package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/transfer"
)

type TransferHandler struct {
	ledger *ledger.Service
}

func NewTransferHandler(ledger *ledger.Service) *TransferHandler {
	return &TransferHandler{ledger: ledger}
}

type CreateTransferRequest struct {
	FromAccountID string          `json:"fromAccountId"`
	ToAccountID   string          `json:"toAccountId"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`
}

// HandleTransfers handles GET (list) and POST (execute) on /api/transfers/
func (h *TransferHandler) HandleTransfers(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		transfers, err := h.ledger.ListTransfers(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if transfers == nil {
			transfers = []*transfer.TransferWithNames{}
		}
		writeJSON(w, http.StatusOK, transfers)
	case http.MethodPost:
		var req CreateTransferRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, err := h.ledger.ExecuteTransfer(r.Context(), userID, transfer.CreateParams{
			FromAccountID: req.FromAccountID,
			ToAccountID:   req.ToAccountID,
			Amount:        req.Amount,
			Description:   req.Description,
			Date:          date,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	default:
		methodNotAllowed(w)
	}
}

// HandleTransferByID handles DELETE on /api/transfers/{id}, removing both legs.
func (h *TransferHandler) HandleTransferByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeleteTransfer(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
