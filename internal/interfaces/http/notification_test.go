package http

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/notification"
)

func TestHandleDevices(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/notifications/devices", "u1", RegisterDeviceRequest{Token: "fcm-1", DeviceType: "android"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, api.notes.tokens["fcm-1"].IsActive)
	assert.Contains(t, api.notes.prefs, "u1", "default preferences are created on first device")

	rec = api.do(http.MethodPost, "/api/notifications/devices", "u1", RegisterDeviceRequest{Token: "fcm-2", DeviceType: "toaster"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/notifications/devices", "u1", RegisterDeviceRequest{Token: "fcm-1"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, api.notes.tokens["fcm-1"].IsActive)

	rec = api.do(http.MethodDelete, "/api/notifications/devices", "u1", RegisterDeviceRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePreferences(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/notifications/preferences", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[notification.Preference](t, rec).RecurringEnabled)

	rec = api.do(http.MethodPatch, "/api/notifications/preferences", "u1", map[string]bool{"recurring_enabled": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	prefs := decodeBody[notification.Preference](t, rec)
	assert.False(t, prefs.RecurringEnabled)
	assert.True(t, prefs.GeneralEnabled)

	rec = api.do(http.MethodPut, "/api/notifications/preferences", "u1", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleNotifications_ListAndOpen(t *testing.T) {
	api := newTestAPI(t)
	for _, title := range []string{"uno", "dos", "tres"} {
		_, err := api.notes.CreateNotification(api.ctx, notification.CreateNotificationParams{
			UserID: "u1", Title: title, Message: "m", Category: notification.CategoryGeneral,
		})
		require.NoError(t, err)
	}

	rec := api.do(http.MethodGet, "/api/notifications/?per_page=2", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[NotificationListResponse](t, rec)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, "tres", list.Notifications[0].Title)
	assert.Equal(t, PaginationResponse{Page: 1, PerPage: 2, Total: 3, Pages: 2}, list.Pagination)
	assert.Nil(t, list.Notifications[0].OpenedAt)
	assert.NotNil(t, list.Notifications[0].Data)

	id := list.Notifications[0].ID
	rec = api.do(http.MethodPost, "/api/notifications/"+id+"/open", "u2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/notifications/"+id+"/open", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/notifications/?per_page=2", "u1", nil)
	opened := decodeBody[NotificationListResponse](t, rec).Notifications[0]
	require.NotNil(t, opened.OpenedAt)

	rec = api.do(http.MethodPost, "/api/notifications/"+uuid.NewString()+"/open", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
