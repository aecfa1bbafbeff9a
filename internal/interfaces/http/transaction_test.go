package http

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/transfer"
	"finanzas/internal/shared/apperr"
)

func TestHandleTransactions_PostAndList(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "100")
	food := api.category("u1", "Comida", transaction.TypeExpense)

	rec := api.do(http.MethodPost, "/api/transactions/", "u1", map[string]any{
		"type": "expense", "amount": 12.5, "description": "Menú", "categoryId": food, "accountId": acc, "date": "2024-03-10",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[transaction.Transaction](t, rec)
	assert.Equal(t, transaction.NaturePuntual, created.Nature)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), created.Date.UTC())
	requireDecEqual(t, "87.5", api.balance("u1", acc))

	rec = api.do(http.MethodGet, "/api/transactions/", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]transaction.TransactionWithNames](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Comida", list[0].CategoryName)
	assert.Equal(t, "Corriente", list[0].AccountName)
}

func TestHandleTransactions_DefaultsDateToNow(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "0")
	salary := api.category("u1", "Sueldo", transaction.TypeIncome)

	rec := api.do(http.MethodPost, "/api/transactions/", "u1", map[string]any{
		"type": "income", "amount": "1000", "description": "Nómina", "categoryId": salary, "accountId": acc,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, testNow.Equal(decodeBody[transaction.Transaction](t, rec).Date))
}

func TestHandleTransactions_InsufficientFunds(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "10")
	food := api.category("u1", "Comida", transaction.TypeExpense)

	rec := api.do(http.MethodPost, "/api/transactions/", "u1", map[string]any{
		"type": "expense", "amount": "999999", "description": "Yate", "categoryId": food, "accountId": acc,
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[errorResponse](t, rec)
	assert.Equal(t, "10.00", body.Available)
	assert.Contains(t, body.Error, "insufficient funds")
	requireDecEqual(t, "10", api.balance("u1", acc))
}

func TestHandleTransactions_Rejects(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "100")
	food := api.category("u1", "Comida", transaction.TypeExpense)
	foreign := api.account("u2", "Ajena", "100")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"zero amount", map[string]any{"type": "expense", "amount": "0", "description": "x", "categoryId": food, "accountId": acc}, http.StatusBadRequest},
		{"bad type", map[string]any{"type": "gift", "amount": "1", "description": "x", "categoryId": food, "accountId": acc}, http.StatusBadRequest},
		{"bad date", map[string]any{"type": "expense", "amount": "1", "description": "x", "categoryId": food, "accountId": acc, "date": "10/03/2024"}, http.StatusBadRequest},
		{"bad nature", map[string]any{"type": "expense", "amount": "1", "description": "x", "categoryId": food, "accountId": acc, "nature": "Mensual"}, http.StatusBadRequest},
		{"foreign account", map[string]any{"type": "expense", "amount": "1", "description": "x", "categoryId": food, "accountId": foreign}, http.StatusNotFound},
		{"unknown category", map[string]any{"type": "expense", "amount": "1", "description": "x", "categoryId": uuid.NewString(), "accountId": acc}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/api/transactions/", "u1", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
	requireDecEqual(t, "100", api.balance("u1", acc))
}

func TestHandleTransactionByID_UpdateAndDelete(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "100")
	food := api.category("u1", "Comida", transaction.TypeExpense)
	tx, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
		Type: transaction.TypeExpense, Amount: dec("40"), Description: "Súper", CategoryID: food, AccountID: acc,
	})
	require.NoError(t, err)

	rec := api.do(http.MethodPut, "/api/transactions/"+tx.ID, "u1", map[string]any{
		"type": "expense", "amount": "25", "description": "Súper", "categoryId": food, "accountId": acc, "date": "2024-03-01",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	requireDecEqual(t, "75", api.balance("u1", acc))

	rec = api.do(http.MethodPut, "/api/transactions/"+tx.ID, "u1", map[string]any{
		"type": "expense", "amount": "25", "description": "Súper", "categoryId": food, "accountId": acc,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "date is required on update")

	rec = api.do(http.MethodGet, "/api/transactions/"+tx.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/transactions/"+tx.ID, "u1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	requireDecEqual(t, "100", api.balance("u1", acc))

	rec = api.do(http.MethodGet, "/api/transactions/"+tx.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTransactionByID_TransferLegIsConflict(t *testing.T) {
	api := newTestAPI(t)
	from := api.account("u1", "Corriente", "100")
	to := api.account("u1", "Ahorro", "0")
	_, err := api.ledger.ExecuteTransfer(api.ctx, "u1", transfer.CreateParams{FromAccountID: from, ToAccountID: to, Amount: dec("10")})
	require.NoError(t, err)
	legs, err := api.ledger.ListTransactions(api.ctx, "u1", transaction.ListFilter{})
	require.NoError(t, err)
	require.Len(t, legs, 2)

	rec := api.do(http.MethodDelete, "/api/transactions/"+legs[0].ID, "u1", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleRecent(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "0")
	salary := api.category("u1", "Sueldo", transaction.TypeIncome)
	for i := range 7 {
		_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
			Type: transaction.TypeIncome, Amount: dec("1"), Description: "Ingreso", CategoryID: salary, AccountID: acc,
			Date: testNow.AddDate(0, 0, -i),
		})
		require.NoError(t, err)
	}

	rec := api.do(http.MethodGet, "/api/transactions/recent", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]transaction.TransactionWithNames](t, rec)
	require.Len(t, list, 5)
	assert.True(t, testNow.Equal(list[0].Date), "newest first")

	rec = api.do(http.MethodGet, "/api/transactions/recent?limit=2", "u1", nil)
	assert.Len(t, decodeBody[[]transaction.TransactionWithNames](t, rec), 2)

	rec = api.do(http.MethodGet, "/api/transactions/recent?limit=-1", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseListFilter(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC)

	tests := []struct {
		name    string
		query   string
		want    transaction.ListFilter
		wantErr bool
	}{
		{name: "empty", query: "", want: transaction.ListFilter{}},
		{
			name:  "all filters",
			query: "type=expense&search=+café+&from=2024-03-01&to=2024-03-31&categoryId=a,b&categoryId=c&accountId=x&limit=10",
			want: transaction.ListFilter{
				Type: transaction.TypeExpense, Search: "café", From: &from, To: &to,
				CategoryIDs: []string{"a", "b", "c"}, AccountIDs: []string{"x"}, Limit: 10,
			},
		},
		{name: "limit is capped", query: "limit=100000", want: transaction.ListFilter{Limit: maxListLimit}},
		{name: "bad type", query: "type=gift", wantErr: true},
		{name: "bad date", query: "from=yesterday", wantErr: true},
		{name: "inverted range", query: "from=2024-04-01&to=2024-03-01", wantErr: true},
		{name: "bad limit", query: "limit=abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := parseListFilter(q)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleTransactions_FiltersByAccount(t *testing.T) {
	api := newTestAPI(t)
	a := api.account("u1", "A", "0")
	b := api.account("u1", "B", "0")
	salary := api.category("u1", "Sueldo", transaction.TypeIncome)
	for _, acc := range []string{a, b, b} {
		_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
			Type: transaction.TypeIncome, Amount: dec("1"), Description: "Ingreso", CategoryID: salary, AccountID: acc,
		})
		require.NoError(t, err)
	}

	rec := api.do(http.MethodGet, "/api/transactions/?accountId="+b, "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]transaction.TransactionWithNames](t, rec)
	require.Len(t, list, 2)
	for _, tx := range list {
		assert.Equal(t, b, tx.AccountID)
	}
}
