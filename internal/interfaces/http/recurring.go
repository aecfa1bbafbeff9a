package http

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
)

type RecurringHandler struct {
	rules  *recurring.Service
	ledger *ledger.Service
	now    func() time.Time
}

func NewRecurringHandler(rules *recurring.Service, ledger *ledger.Service) *RecurringHandler {
	return &RecurringHandler{rules: rules, ledger: ledger, now: time.Now}
}

type CreateRuleRequest struct {
	Description string              `json:"description"`
	Amount      decimal.Decimal     `json:"amount"`
	Type        transaction.Type    `json:"type"`
	Frequency   recurring.Frequency `json:"frequency"`
	StartDate   string              `json:"startDate"`
	CategoryID  string              `json:"categoryId"`
	AccountID   string              `json:"accountId"`
}

type UpdateRuleRequest struct {
	Description *string              `json:"description"`
	Amount      *decimal.Decimal     `json:"amount"`
	Type        *transaction.Type    `json:"type"`
	Frequency   *recurring.Frequency `json:"frequency"`
	NextDate    *string              `json:"nextDate"`
	CategoryID  *string              `json:"categoryId"`
	AccountID   *string              `json:"accountId"`
}

type RuleListResponse struct {
	Rules  []*recurring.Rule `json:"rules"`
	Totals recurring.Totals  `json:"totals"`
}

// HandleRules handles GET (list with totals) and POST (create) on /api/recurring/
func (h *RecurringHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		rules, err := h.rules.ListRules(r.Context(), userID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if rules == nil {
			rules = []*recurring.Rule{}
		}
		writeJSON(w, http.StatusOK, RuleListResponse{Rules: rules, Totals: recurring.Summarize(rules)})
	case http.MethodPost:
		var req CreateRuleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		start, err := parseDate(req.StartDate)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rule, err := h.rules.CreateRule(r.Context(), recurring.CreateParams{
			UserID:      userID,
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Frequency:   req.Frequency,
			StartDate:   start,
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rule)
	default:
		methodNotAllowed(w)
	}
}

// HandleRuleByID handles GET, PATCH and DELETE on /api/recurring/{id}
func (h *RecurringHandler) HandleRuleByID(w http.ResponseWriter, r *http.Request) {
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
		rule, err := h.rules.GetRule(r.Context(), userID, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	case http.MethodPatch:
		var req UpdateRuleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		params := recurring.UpdateParams{
			Description: req.Description,
			Amount:      req.Amount,
			Type:        req.Type,
			Frequency:   req.Frequency,
			CategoryID:  req.CategoryID,
			AccountID:   req.AccountID,
		}
		if req.NextDate != nil {
			next, err := parseDate(*req.NextDate)
			if err != nil {
				writeError(w, r, err)
				return
			}
			params.NextDate = &next
		}
		rule, err := h.rules.UpdateRule(r.Context(), userID, id, params)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rule)
	case http.MethodDelete:
		if err := h.rules.DeleteRule(r.Context(), userID, id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w)
	}
}

// HandleGenerate runs one pass of the caller's due rules.
func (h *RecurringHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	result, err := h.ledger.ProcessDueRecurringRulesForUser(r.Context(), userID, h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
