package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/transaction"
)

type accountBody struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Available      decimal.Decimal `json:"availableBalance"`
}

func TestHandleAccounts_CreateAndList(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/accounts/", "u1", map[string]any{
		"name": " Corriente ", "initialBalance": "250.50", "bank": "BBVA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[accountBody](t, rec)
	assert.Equal(t, "Corriente", created.Name)
	assert.Equal(t, "Normal", created.Type)

	rec = api.do(http.MethodGet, "/api/accounts/", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]accountBody](t, rec)
	require.Len(t, list, 1)
	requireDecEqual(t, "250.50", list[0].Available)

	rec = api.do(http.MethodGet, "/api/accounts/", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]accountBody](t, rec))
}

func TestHandleAccounts_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		userID     string
		body       any
		wantStatus int
	}{
		{"anonymous", http.MethodGet, "/api/accounts/", "", nil, http.StatusUnauthorized},
		{"bad method", http.MethodPut, "/api/accounts/", "u1", nil, http.StatusMethodNotAllowed},
		{"malformed body", http.MethodPost, "/api/accounts/", "u1", "{", http.StatusBadRequest},
		{"empty body", http.MethodPost, "/api/accounts/", "u1", "", http.StatusBadRequest},
		{"missing name", http.MethodPost, "/api/accounts/", "u1", map[string]any{"name": " "}, http.StatusBadRequest},
		{"unknown type", http.MethodPost, "/api/accounts/", "u1", map[string]any{"name": "X", "type": "Crypto"}, http.StatusBadRequest},
		{"malformed id", http.MethodGet, "/api/accounts/not-a-uuid", "u1", nil, http.StatusNotFound},
		{"unknown id", http.MethodGet, "/api/accounts/" + uuid.NewString(), "u1", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rec := api.do(tt.method, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleAccountByID_OtherUserIsNotFound(t *testing.T) {
	api := newTestAPI(t)
	id := api.account("u1", "Corriente", "10")

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		rec := api.do(method, "/api/accounts/"+id, "u2", map[string]any{"name": "Mine"})
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
}

func TestHandleAccountByID_UpdateInitialBalanceShiftsBalance(t *testing.T) {
	api := newTestAPI(t)
	id := api.account("u1", "Corriente", "100")
	cat := api.category("u1", "Sueldo", transaction.TypeIncome)
	_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
		Type: transaction.TypeIncome, Amount: dec("50"), Description: "Nómina", CategoryID: cat, AccountID: id,
	})
	require.NoError(t, err)

	rec := api.do(http.MethodPatch, "/api/accounts/"+id, "u1", map[string]any{"initialBalance": "130", "name": "Principal"})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[accountBody](t, rec)
	assert.Equal(t, "Principal", body.Name)
	requireDecEqual(t, "180", body.Available)
}

func TestHandleAccountByID_Delete(t *testing.T) {
	api := newTestAPI(t)
	used := api.account("u1", "Usada", "100")
	unused := api.account("u1", "Libre", "0")
	cat := api.category("u1", "Comida", transaction.TypeExpense)
	_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
		Type: transaction.TypeExpense, Amount: dec("5"), Description: "Pan", CategoryID: cat, AccountID: used,
	})
	require.NoError(t, err)

	rec := api.do(http.MethodDelete, "/api/accounts/"+used, "u1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodDelete, "/api/accounts/"+unused, "u1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodGet, "/api/accounts/"+unused, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRecalculateBalances(t *testing.T) {
	api := newTestAPI(t)
	id := api.account("u1", "Corriente", "100")
	cat := api.category("u1", "Comida", transaction.TypeExpense)
	_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
		Type: transaction.TypeExpense, Amount: dec("30"), Description: "Cena", CategoryID: cat, AccountID: id,
	})
	require.NoError(t, err)

	rec := api.do(http.MethodPost, "/api/accounts/recalculate-balances", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]int{"recalculated": 1}, decodeBody[map[string]int](t, rec))
	requireDecEqual(t, "70", api.balance("u1", id))

	rec = api.do(http.MethodGet, "/api/accounts/recalculate-balances", "u1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
