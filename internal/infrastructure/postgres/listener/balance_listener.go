// Package listener reacts to PostgreSQL NOTIFY events raised by triggers in
// the schema.
package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

const (
	channelName       = "balance_invalidated"
	reconnectInterval = 5 * time.Second
	pingInterval      = 90 * time.Second
	repairTimeout     = 30 * time.Second
)

// BalanceInvalidated is the payload sent by the accounts trigger when a
// cached balance is set back to NULL.
type BalanceInvalidated struct {
	UserID    string `json:"user_id"`
	AccountID string `json:"account_id"`
}

// Repairer recomputes a user's empty balance caches.
type Repairer interface {
	RecalculateMissingBalances(ctx context.Context, userID string) int
}

// BalanceListener rebuilds cleared balance caches as soon as the database
// announces them, instead of waiting for the next read or scheduled repair.
type BalanceListener struct {
	connStr    string
	repairer   Repairer
	log        zerolog.Logger
	shutdownCh chan struct{}
	done       chan struct{}
}

func NewBalanceListener(connStr string, repairer Repairer, log zerolog.Logger) *BalanceListener {
	return &BalanceListener{
		connStr:    connStr,
		repairer:   repairer,
		log:        log.With().Str("component", "balance_listener").Logger(),
		shutdownCh: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start begins listening for notifications in a background goroutine
func (l *BalanceListener) Start(ctx context.Context) {
	go l.listen(ctx)
	l.log.Info().Str("channel", channelName).Msg("balance listener started")
}

// Stop gracefully shuts down the listener
func (l *BalanceListener) Stop() {
	close(l.shutdownCh)
	<-l.done
	l.log.Info().Msg("balance listener stopped")
}

func (l *BalanceListener) listen(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		default:
			l.connectAndListen(ctx)
		}

		// Wait before reconnecting
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(reconnectInterval):
			l.log.Info().Msg("reconnecting to postgres for notifications")
		}
	}
}

func (l *BalanceListener) connectAndListen(ctx context.Context) {
	listener := pq.NewListener(l.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnected:
			l.log.Debug().Msg("connected to notification channel")
		case pq.ListenerEventDisconnected:
			l.log.Warn().Err(err).Msg("disconnected from notification channel")
		case pq.ListenerEventReconnected:
			l.log.Info().Msg("reconnected to notification channel")
		case pq.ListenerEventConnectionAttemptFailed:
			l.log.Warn().Err(err).Msg("notification connection attempt failed")
		}
	})
	defer listener.Close()

	if err := listener.Listen(channelName); err != nil {
		l.log.Error().Err(err).Str("channel", channelName).Msg("failed to listen")
		return
	}

	for {
		select {
		case <-l.shutdownCh:
			return
		case <-ctx.Done():
			return
		case n := <-listener.Notify:
			if n == nil {
				// connection lost, reconnect
				return
			}
			l.handleNotification(n)
		case <-time.After(pingInterval):
			go func() {
				if err := listener.Ping(); err != nil {
					l.log.Warn().Err(err).Msg("listener ping failed")
				}
			}()
		}
	}
}

func (l *BalanceListener) handleNotification(n *pq.Notification) {
	var payload BalanceInvalidated
	if err := json.Unmarshal([]byte(n.Extra), &payload); err != nil || payload.UserID == "" {
		l.log.Warn().Err(err).Str("payload", n.Extra).Msg("ignoring malformed balance notification")
		return
	}

	// the parent ctx may already be cancelled during shutdown
	ctx, cancel := context.WithTimeout(context.Background(), repairTimeout)
	defer cancel()

	repaired := l.repairer.RecalculateMissingBalances(ctx, payload.UserID)
	l.log.Debug().
		Str("user_id", payload.UserID).
		Str("account_id", payload.AccountID).
		Int("repaired", repaired).
		Msg("handled balance invalidation")
}
