package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"finanzas/internal/domain/ledger"
	"finanzas/internal/shared/logger"
)

// RecurringProcessor runs one pass over every due recurring rule.
type RecurringProcessor interface {
	ProcessDueRecurringRules(ctx context.Context, now time.Time) (ledger.RecurringResult, error)
}

// BalanceRepairer fills empty balance caches.
type BalanceRepairer interface {
	UsersWithMissingBalance(ctx context.Context) ([]string, error)
	RecalculateMissingBalances(ctx context.Context, userID string) int
}

// RecurringRulesJob generates the transactions of every due rule, one
// period per rule. Rules further behind catch up on later runs.
type RecurringRulesJob struct {
	processor RecurringProcessor
	now       func() time.Time
}

func NewRecurringRulesJob(processor RecurringProcessor) *RecurringRulesJob {
	return &RecurringRulesJob{processor: processor, now: time.Now}
}

func (j *RecurringRulesJob) Execute(ctx context.Context) error {
	res, err := j.processor.ProcessDueRecurringRules(ctx, j.now())
	if err != nil {
		return fmt.Errorf("recurring pass failed: %w", err)
	}
	if res.Failed > 0 {
		return fmt.Errorf("%d recurring rules failed", res.Failed)
	}
	return nil
}

func (j *RecurringRulesJob) UserID() string { return "" }

func (j *RecurringRulesJob) Description() string { return "recurring rules" }

// BalanceRepairJob recomputes the empty balance caches of one user.
type BalanceRepairJob struct {
	userID   string
	repairer BalanceRepairer
}

func NewBalanceRepairJob(userID string, repairer BalanceRepairer) *BalanceRepairJob {
	return &BalanceRepairJob{userID: userID, repairer: repairer}
}

func (j *BalanceRepairJob) Execute(ctx context.Context) error {
	n := j.repairer.RecalculateMissingBalances(ctx, j.userID)
	log := logger.FromContext(ctx, zerolog.Nop())
	log.Debug().Int("repaired", n).Msg("balance repair finished")
	return ctx.Err()
}

func (j *BalanceRepairJob) UserID() string { return j.userID }

func (j *BalanceRepairJob) Description() string { return "balance repair" }

// BalanceRepairJobs returns a job provider yielding one BalanceRepairJob per
// user with a missing balance.
func BalanceRepairJobs(repairer BalanceRepairer) func(context.Context) ([]Job, error) {
	return func(ctx context.Context) ([]Job, error) {
		users, err := repairer.UsersWithMissingBalance(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users with missing balances: %w", err)
		}
		jobs := make([]Job, 0, len(users))
		for _, id := range users {
			jobs = append(jobs, NewBalanceRepairJob(id, repairer))
		}
		return jobs, nil
	}
}
