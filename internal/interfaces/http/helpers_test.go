package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finanzas/internal/domain/account"
	"finanzas/internal/domain/category"
	"finanzas/internal/domain/ledger"
	"finanzas/internal/domain/notification"
	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/summary"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/domain/user"
	"finanzas/internal/infrastructure/memory"
	"finanzas/internal/shared/auth"
	"finanzas/internal/shared/middleware"
)

var testNow = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

// testAPI serves the handlers over the in-memory store. Requests carry the
// user ID in the context the way middleware.Auth leaves it.
type testAPI struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	ledger *ledger.Service
	users  *fakeUserRepo
	notes  *fakeNotificationRepo
	jwt    *auth.JWT
	mux    *http.ServeMux
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	r := store.Repos()
	led := ledger.NewService(store, zerolog.Nop(), ledger.WithClock(func() time.Time { return testNow }))

	users := newFakeUserRepo()
	notes := newFakeNotificationRepo()
	jwt := auth.NewJWT("test-secret")

	accountHandler := NewAccountHandler(account.NewService(r.Accounts), led)
	categoryHandler := NewCategoryHandler(category.NewService(r.Categories))
	transactionHandler := NewTransactionHandler(led)
	recurringHandler := NewRecurringHandler(recurring.NewService(r.Recurring, r.Accounts, r.Categories), led)
	recurringHandler.now = func() time.Time { return testNow }
	transferHandler := NewTransferHandler(led)
	summaryHandler := NewSummaryHandler(summary.NewService(led, r.Transactions, r.Categories, r.Recurring))
	authHandler := NewAuthHandler(user.NewService(users), jwt)
	userHandler := NewUserHandler(user.NewService(users))
	notificationHandler := NewNotificationHandler(notification.NewService(notes, nil, nil, zerolog.Nop()))
	cronHandler := NewCronHandler(led)
	cronHandler.now = func() time.Time { return testNow }

	mux := http.NewServeMux()
	mux.HandleFunc("/health", HandleHealth(nil))
	mux.HandleFunc("/api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("/api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("/api/auth/logout", authHandler.HandleLogout)
	mux.HandleFunc("/api/users/me", userHandler.HandleMe)
	mux.HandleFunc("/api/accounts/", accountHandler.HandleAccounts)
	mux.HandleFunc("/api/accounts/recalculate-balances", accountHandler.HandleRecalculateBalances)
	mux.HandleFunc("/api/accounts/{id}", accountHandler.HandleAccountByID)
	mux.HandleFunc("/api/categories/", categoryHandler.HandleCategories)
	mux.HandleFunc("/api/categories/{id}", categoryHandler.HandleCategoryByID)
	mux.HandleFunc("/api/transactions/", transactionHandler.HandleTransactions)
	mux.HandleFunc("/api/transactions/recent", transactionHandler.HandleRecent)
	mux.HandleFunc("/api/transactions/{id}", transactionHandler.HandleTransactionByID)
	mux.HandleFunc("/api/recurring/", recurringHandler.HandleRules)
	mux.HandleFunc("/api/recurring/generate", recurringHandler.HandleGenerate)
	mux.HandleFunc("/api/recurring/{id}", recurringHandler.HandleRuleByID)
	mux.HandleFunc("/api/transfers/", transferHandler.HandleTransfers)
	mux.HandleFunc("/api/transfers/{id}", transferHandler.HandleTransferByID)
	mux.HandleFunc("/api/dashboard", summaryHandler.HandleDashboard)
	mux.HandleFunc("/api/budgets", summaryHandler.HandleBudgets)
	mux.HandleFunc("/api/overview", summaryHandler.HandleOverview)
	mux.HandleFunc("/api/notifications/", notificationHandler.HandleNotifications)
	mux.HandleFunc("/api/notifications/devices", notificationHandler.HandleDevices)
	mux.HandleFunc("/api/notifications/preferences", notificationHandler.HandlePreferences)
	mux.HandleFunc("/api/notifications/{id}/open", notificationHandler.HandleOpen)
	mux.HandleFunc("/api/cron/recurring", cronHandler.HandleRecurring)

	return &testAPI{
		t: t, ctx: context.Background(), store: store, ledger: led,
		users: users, notes: notes, jwt: jwt, mux: mux,
	}
}

// do sends a request as userID ("" for anonymous). A string body is sent
// verbatim, anything else is JSON encoded.
func (a *testAPI) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) account(userID, name, initial string) string {
	a.t.Helper()
	acc, err := a.store.Repos().Accounts.Create(a.ctx, account.CreateParams{
		ID: uuid.NewString(), UserID: userID, Name: name, Type: account.TypeNormal, InitialBalance: dec(initial),
	})
	require.NoError(a.t, err)
	return acc.ID
}

func (a *testAPI) category(userID, name string, typ transaction.Type) string {
	a.t.Helper()
	c, err := a.store.Repos().Categories.Create(a.ctx, category.CreateParams{
		ID: uuid.NewString(), UserID: userID, Name: name, Type: typ,
	})
	require.NoError(a.t, err)
	return c.ID
}

func (a *testAPI) balance(userID, accountID string) decimal.Decimal {
	a.t.Helper()
	b, err := a.ledger.AvailableBalance(a.ctx, userID, accountID)
	require.NoError(a.t, err)
	return b
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[string]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]*user.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == params.Email {
			return nil, user.ErrEmailTaken
		}
	}
	u := &user.User{ID: params.ID, Email: params.Email, Name: params.Name, PasswordHash: params.PasswordHash, CreatedAt: testNow}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, params user.UpdateUserParams) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if params.Name != nil {
		u.Name = *params.Name
	}
	return u, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	tokens        map[string]*notification.DeviceToken
	prefs         map[string]*notification.Preference
	notifications []*notification.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		tokens: map[string]*notification.DeviceToken{},
		prefs:  map[string]*notification.Preference{},
	}
}

func (f *fakeNotificationRepo) UpsertDeviceToken(ctx context.Context, params notification.CreateDeviceTokenParams) (*notification.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &notification.DeviceToken{ID: uuid.NewString(), UserID: params.UserID, Token: params.Token, DeviceType: params.DeviceType, IsActive: true}
	f.tokens[params.Token] = t
	return t, nil
}

func (f *fakeNotificationRepo) GetActiveTokensByUserID(ctx context.Context, userID string) ([]*notification.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*notification.DeviceToken
	for _, t := range f.tokens {
		if t.UserID == userID && t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) DeactivateToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[token]; ok {
		t.IsActive = false
	}
	return nil
}

func (f *fakeNotificationRepo) GetPreferences(ctx context.Context, userID string) (*notification.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		return nil, notification.ErrPreferencesNotFound
	}
	return p, nil
}

func (f *fakeNotificationRepo) UpsertPreferences(ctx context.Context, userID string, params notification.UpdatePreferenceParams) (*notification.Preference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prefs[userID]
	if !ok {
		p = notification.DefaultPreference(userID)
		f.prefs[userID] = p
	}
	for dst, src := range map[*bool]*bool{
		&p.RecurringEnabled: params.RecurringEnabled,
		&p.TransfersEnabled: params.TransfersEnabled,
		&p.GeneralEnabled:   params.GeneralEnabled,
	} {
		if src != nil {
			*dst = *src
		}
	}
	return p, nil
}

func (f *fakeNotificationRepo) CreateNotification(ctx context.Context, params notification.CreateNotificationParams) (*notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := &notification.Notification{
		ID: uuid.NewString(), UserID: params.UserID, Title: params.Title, Message: params.Message,
		Category: params.Category, Data: params.Data, CreatedAt: testNow.Add(time.Duration(len(f.notifications)) * time.Minute),
	}
	f.notifications = append(f.notifications, n)
	return n, nil
}

func (f *fakeNotificationRepo) ListByUserID(ctx context.Context, userID string, page, perPage int) ([]*notification.Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []*notification.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	start := min((page-1)*perPage, len(mine))
	end := min(start+perPage, len(mine))
	return mine[start:end], len(mine), nil
}

func (f *fakeNotificationRepo) MarkOpened(ctx context.Context, userID, notificationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.ID == notificationID && n.UserID == userID {
			opened := testNow
			n.OpenedAt = &opened
			return nil
		}
	}
	return notification.ErrNotificationNotFound
}
