package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finanzas/internal/domain/recurring"
	"finanzas/internal/domain/transaction"
	"finanzas/internal/shared/logger"
)

// errAlreadyAdvanced aborts a rule's unit of work when another runner moved
// its next date first.
var errAlreadyAdvanced = errors.New("recurring rule already advanced")

// RecurringResult counts what one pass over the due rules did.
type RecurringResult struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// ProcessDueRecurringRules generates one transaction for every rule due at
// now, across all users, and advances each rule by a single period. Rules
// still due afterwards are picked up by the next call. A failing rule is
// counted and does not stop the others.
func (s *Service) ProcessDueRecurringRules(ctx context.Context, now time.Time) (RecurringResult, error) {
	rules, err := s.store.Repos().Recurring.ListDue(ctx, now)
	if err != nil {
		return RecurringResult{}, fmt.Errorf("failed to list due recurring rules: %w", err)
	}
	return s.processRules(ctx, rules, now)
}

// ProcessDueRecurringRulesForUser is ProcessDueRecurringRules for one user.
func (s *Service) ProcessDueRecurringRulesForUser(ctx context.Context, userID string, now time.Time) (RecurringResult, error) {
	rules, err := s.store.Repos().Recurring.ListDueByUser(ctx, userID, now)
	if err != nil {
		return RecurringResult{}, fmt.Errorf("failed to list due recurring rules: %w", err)
	}
	return s.processRules(ctx, rules, now)
}

func (s *Service) processRules(ctx context.Context, rules []*recurring.Rule, now time.Time) (RecurringResult, error) {
	log := logger.FromContext(ctx, s.log)

	var res RecurringResult
	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		tx, err := s.generateFromRule(ctx, rule, now)
		switch {
		case errors.Is(err, errAlreadyAdvanced):
			res.Skipped++
			continue
		case err != nil:
			res.Failed++
			recurringFailed.Add(ctx, 1)
			log.Error().Err(err).Str("rule_id", rule.ID).Str("user_id", rule.UserID).Msg("failed to generate recurring transaction")
			continue
		}

		res.Generated++
		recurringGenerated.Add(ctx, 1)
		if s.notifier != nil {
			if err := s.notifier.NotifyRecurringGenerated(ctx, tx); err != nil {
				log.Warn().Err(err).Str("rule_id", rule.ID).Msg("failed to notify recurring transaction")
			}
		}
	}

	if len(rules) > 0 {
		log.Info().
			Int("due", len(rules)).
			Int("generated", res.Generated).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("processed recurring rules")
	}
	return res, nil
}

// generateFromRule materializes the occurrence at rule.NextDate. The advance
// is a compare-and-set on the previous date, taken first so a concurrent
// runner blocks on it and then finds the rule already moved.
func (s *Service) generateFromRule(ctx context.Context, rule *recurring.Rule, now time.Time) (*transaction.Transaction, error) {
	var created *transaction.Transaction
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repositories) error {
		next := recurring.Advance(rule.NextDate, rule.Frequency, now)
		ok, err := r.Recurring.AdvanceNextDate(ctx, rule.UserID, rule.ID, rule.NextDate, next)
		if err != nil {
			return fmt.Errorf("failed to advance rule: %w", err)
		}
		if !ok {
			return errAlreadyAdvanced
		}

		if _, err := availableBalance(ctx, r, rule.UserID, rule.AccountID); err != nil {
			return err
		}

		tx, err := r.Transactions.Create(ctx, transaction.CreateParams{
			ID:              uuid.NewString(),
			UserID:          rule.UserID,
			Type:            rule.Type,
			Amount:          rule.Amount,
			Description:     recurring.DescriptionPrefix + rule.Description,
			CategoryID:      rule.CategoryID,
			AccountID:       rule.AccountID,
			Date:            rule.NextDate,
			Nature:          transaction.NatureRecurrente,
			RecurringRuleID: rule.ID,
		})
		if err != nil {
			return err
		}
		if err := ApplyTransactionDelta(ctx, r, rule.UserID, rule.AccountID, rule.Type, rule.Amount); err != nil {
			return err
		}
		created = tx
		return nil
	})
	return created, err
}
