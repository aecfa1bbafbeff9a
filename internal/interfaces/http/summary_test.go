package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/summary"
	"finanzas/internal/domain/transaction"
)

func TestHandleDashboard(t *testing.T) {
	api := newTestAPI(t)
	acc := api.account("u1", "Corriente", "100")
	salary := api.category("u1", "Sueldo", transaction.TypeIncome)
	_, err := api.ledger.PostTransaction(api.ctx, "u1", transaction.CreateParams{
		Type: transaction.TypeIncome, Amount: dec("50"), Description: "Extra", CategoryID: salary, AccountID: acc,
		Date: time.Now(),
	})
	require.NoError(t, err)

	rec := api.do(http.MethodGet, "/api/dashboard", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	d := decodeBody[summary.Dashboard](t, rec)
	requireDecEqual(t, "150", d.TotalBalance)
	require.Len(t, d.Accounts, 1)
}

func TestHandleBudgets_EmptyIsArray(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/budgets", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleOverview(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/overview", "u1", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "ingresos")
}

func TestSummaryHandlers_RequireAuthAndGet(t *testing.T) {
	api := newTestAPI(t)
	for _, path := range []string{"/api/dashboard", "/api/budgets", "/api/overview"} {
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusMethodNotAllowed, api.do(http.MethodPost, path, "u1", nil).Code, path)
	}
}
