package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/apperr"
)

const (
	dateLayout         = "2006-01-02"
	defaultRecentLimit = 5
	maxListLimit       = 500
)

type TransactionHandler struct {
	ledger *ledger.Service
}

func NewTransactionHandler(ledger *ledger.Service) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

type TransactionRequest struct {
	Type        transaction.Type   `json:"type"`
	Amount      decimal.Decimal    `json:"amount"`
	Description string             `json:"description"`
	CategoryID  string             `json:"categoryId"`
	AccountID   string             `json:"accountId"`
	Date        string             `json:"date"`
	Nature      transaction.Nature `json:"nature"`
}

// HandleTransactions handles GET (filtered list) and POST (create) on /api/transactions/
//
// Filters: type, search, from, to (YYYY-MM-DD, inclusive), categoryId and
// accountId (repeatable or comma separated), limit.
func (h *TransactionHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		filter, err := parseListFilter(r.URL.Query())
		if err != nil {
			writeError(w, r, err)
			return
		}
		h.writeList(w, r, userID, filter)
	case http.MethodPost:
		var req TransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		date, err := parseOptionalDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := h.ledger.PostTransaction(r.Context(), userID, transaction.CreateParams{
			Type:        req.Type,
			Amount:      req.Amount,
			Description: req.Description,
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
			Date:        date,
			Nature:      req.Nature,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, tx)
	default:
		methodNotAllowed(w)
	}
}

// HandleRecent returns the newest transactions, 5 unless limit says otherwise.
func (h *TransactionHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r.URL.Query().Get("limit"), defaultRecentLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeList(w, r, userID, transaction.ListFilter{Limit: limit})
}

// HandleTransactionByID handles GET, PUT and DELETE on /api/transactions/{id}
func (h *TransactionHandler) HandleTransactionByID(w http.ResponseWriter, r *http.Request) {
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
		tx, err := h.ledger.GetTransaction(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	case http.MethodPut:
		var req TransactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, r, err)
			return
		}
		tx, err := h.ledger.UpdateTransaction(r.Context(), userID, id, transaction.UpdateParams{
			Type:        req.Type,
			Amount:      req.Amount,
			Description: req.Description,
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
			Date:        date,
			Nature:      req.Nature,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tx)
	case http.MethodDelete:
		if err := h.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

func (h *TransactionHandler) writeList(w http.ResponseWriter, r *http.Request, userID string, filter transaction.ListFilter) {
	txs, err := h.ledger.ListTransactions(r.Context(), userID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txs == nil {
		txs = []*transaction.TransactionWithNames{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func parseListFilter(q url.Values) (transaction.ListFilter, error) {
	var f transaction.ListFilter

	if t := q.Get("type"); t != "" {
		f.Type = transaction.Type(t)
		if !f.Type.Valid() {
			return f, transaction.ErrInvalidType
		}
	}
	f.Search = strings.TrimSpace(q.Get("search"))

	if v := q.Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return f, err
		}
		// Inclusive of the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, apperr.Invalid("from must not be after to")
	}

	f.CategoryIDs = splitValues(q["categoryId"])
	f.AccountIDs = splitValues(q["accountId"])

	limit, err := parseLimit(q.Get("limit"), 0)
	if err != nil {
		return f, err
	}
	f.Limit = limit
	return f, nil
}

func parseLimit(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, apperr.Invalid("limit must be a positive integer")
	}
	return min(n, maxListLimit), nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Time{}, apperr.Invalid("invalid date %q, use YYYY-MM-DD", v)
}

func parseOptionalDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return parseDate(v)
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
