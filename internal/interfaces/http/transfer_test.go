package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/transfer"
)

func TestHandleTransfers_ExecuteListDelete(t *testing.T) {
	api := newTestAPI(t)
	from := api.account("u1", "Corriente", "100")
	to := api.account("u1", "Ahorro", "0")

	rec := api.do(http.MethodPost, "/api/transfers/", "u1", map[string]any{
		"fromAccountId": from, "toAccountId": to, "amount": "40", "description": "Hucha", "date": "2024-03-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[transfer.Transfer](t, rec)
	requireDecEqual(t, "60", api.balance("u1", from))
	requireDecEqual(t, "40", api.balance("u1", to))

	rec = api.do(http.MethodGet, "/api/transfers/", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]transfer.TransferWithNames](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Corriente", list[0].FromAccountName)
	assert.Equal(t, "Ahorro", list[0].ToAccountName)

	rec = api.do(http.MethodDelete, "/api/transfers/"+created.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, "/api/transfers/"+created.ID, "u1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	requireDecEqual(t, "100", api.balance("u1", from))
	requireDecEqual(t, "0", api.balance("u1", to))
}

func TestHandleTransfers_Rejects(t *testing.T) {
	api := newTestAPI(t)
	from := api.account("u1", "Corriente", "100")
	to := api.account("u1", "Ahorro", "0")
	foreign := api.account("u2", "Ajena", "0")

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{"same account", map[string]any{"fromAccountId": from, "toAccountId": from, "amount": "1"}, http.StatusBadRequest},
		{"zero amount", map[string]any{"fromAccountId": from, "toAccountId": to, "amount": "0"}, http.StatusBadRequest},
		{"bad date", map[string]any{"fromAccountId": from, "toAccountId": to, "amount": "1", "date": "mañana"}, http.StatusBadRequest},
		{"foreign destination", map[string]any{"fromAccountId": from, "toAccountId": foreign, "amount": "1"}, http.StatusNotFound},
		{"unknown source", map[string]any{"fromAccountId": uuid.NewString(), "toAccountId": to, "amount": "1"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(http.MethodPost, "/api/transfers/", "u1", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
	requireDecEqual(t, "100", api.balance("u1", from))
}

func TestHandleTransferByID_OnlyDelete(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/transfers/"+uuid.NewString(), "u1", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
