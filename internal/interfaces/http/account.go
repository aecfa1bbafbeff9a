package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/ledger"
)

type AccountHandler struct {
	accounts *account.Service
	ledger   *ledger.Service
}

func NewAccountHandler(accounts *account.Service, ledger *ledger.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts, ledger: ledger}
}

type CreateAccountRequest struct {
	Name           string          `json:"name"`
	Type           account.Type    `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Bank           string          `json:"bank"`
	Color          string          `json:"color"`
}

type UpdateAccountRequest struct {
	Name           *string          `json:"name"`
	Type           *account.Type    `json:"type"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
	Bank           *string          `json:"bank"`
	Color          *string          `json:"color"`
}

// HandleAccounts handles GET (list with balances) and POST (create) on /api/accounts/
func (h *AccountHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		balances, err := h.ledger.ListAccountBalances(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, balances)
	case http.MethodPost:
		var req CreateAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		acc, err := h.accounts.CreateAccount(r.Context(), account.CreateParams{
			UserID:         userID,
			Name:           req.Name,
			Type:           req.Type,
			InitialBalance: req.InitialBalance,
			Bank:           req.Bank,
			Color:          req.Color,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, acc)
	default:
		methodNotAllowed(w)
	}
}

// HandleAccountByID handles GET, PATCH and DELETE on /api/accounts/{id}
func (h *AccountHandler) HandleAccountByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeAccountBalance(w, r, userID, id)
	case http.MethodPatch:
		var req UpdateAccountRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		_, err := h.accounts.UpdateAccount(r.Context(), userID, id, account.UpdateParams{
			Name:           req.Name,
			Type:           req.Type,
			InitialBalance: req.InitialBalance,
			Bank:           req.Bank,
			Color:          req.Color,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.writeAccountBalance(w, r, userID, id)
	case http.MethodDelete:
		if err := h.accounts.DeleteAccount(r.Context(), userID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// HandleRecalculateBalances discards the cached balances of the caller's
// accounts and recomputes them from history.
func (h *AccountHandler) HandleRecalculateBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.ledger.RebuildBalances(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recalculated": n})
}

func (h *AccountHandler) writeAccountBalance(w http.ResponseWriter, r *http.Request, userID, id string) {
	available, err := h.ledger.AvailableBalance(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	acc, err := h.accounts.GetAccount(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger.AccountBalance{Account: acc, Available: available})
}
