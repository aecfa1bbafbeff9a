package memory

import (
	"context"
	"sort"
	"time"

	"finanzas/internal/domain/recurring"
)

type recurringRepo struct{ binding }

func (r *recurringRepo) Create(ctx context.Context, params recurring.CreateParams) (*recurring.Rule, error) {
	now := r.now()
	rule := &recurring.Rule{
		ID:          params.ID,
		UserID:      params.UserID,
		Description: params.Description,
		Amount:      params.Amount,
		Type:        params.Type,
		Frequency:   params.Frequency,
		StartDate:   params.StartDate,
		NextDate:    params.StartDate,
		CategoryID:  params.CategoryID,
		AccountID:   params.AccountID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := r.do(func(st *state) error {
		st.rules[rule.ID] = rule
		return nil
	})
	if err != nil {
		return nil, err
	}
	cp := *rule
	return &cp, nil
}

func (r *recurringRepo) GetByID(ctx context.Context, userID, id string) (*recurring.Rule, error) {
	var out *recurring.Rule
	err := r.do(func(st *state) error {
		rule, err := ownedRule(st, userID, id)
		if err != nil {
			return err
		}
		cp := *rule
		out = &cp
		return nil
	})
	return out, err
}

func (r *recurringRepo) ListByUserID(ctx context.Context, userID string) ([]*recurring.Rule, error) {
	return r.list(func(rule *recurring.Rule) bool { return rule.UserID == userID })
}

func (r *recurringRepo) ListDue(ctx context.Context, now time.Time) ([]*recurring.Rule, error) {
	return r.list(func(rule *recurring.Rule) bool { return rule.Due(now) })
}

func (r *recurringRepo) ListDueByUser(ctx context.Context, userID string, now time.Time) ([]*recurring.Rule, error) {
	return r.list(func(rule *recurring.Rule) bool { return rule.UserID == userID && rule.Due(now) })
}

func (r *recurringRepo) list(keep func(*recurring.Rule) bool) ([]*recurring.Rule, error) {
	var out []*recurring.Rule
	err := r.do(func(st *state) error {
		for _, rule := range st.rules {
			if keep(rule) {
				cp := *rule
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextDate.Equal(out[j].NextDate) {
			return out[i].NextDate.Before(out[j].NextDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *recurringRepo) Update(ctx context.Context, userID, id string, params recurring.UpdateParams) (*recurring.Rule, error) {
	var out *recurring.Rule
	err := r.do(func(st *state) error {
		rule, err := ownedRule(st, userID, id)
		if err != nil {
			return err
		}
		if params.Description != nil {
			rule.Description = *params.Description
		}
		if params.Amount != nil {
			rule.Amount = *params.Amount
		}
		if params.Type != nil {
			rule.Type = *params.Type
		}
		if params.Frequency != nil {
			rule.Frequency = *params.Frequency
		}
		if params.NextDate != nil {
			rule.NextDate = *params.NextDate
		}
		if params.CategoryID != nil {
			rule.CategoryID = *params.CategoryID
		}
		if params.AccountID != nil {
			rule.AccountID = *params.AccountID
		}
		rule.UpdatedAt = r.now()
		cp := *rule
		out = &cp
		return nil
	})
	return out, err
}

func (r *recurringRepo) Delete(ctx context.Context, userID, id string) error {
	return r.do(func(st *state) error {
		if _, err := ownedRule(st, userID, id); err != nil {
			return err
		}
		delete(st.rules, id)
		return nil
	})
}

func (r *recurringRepo) AdvanceNextDate(ctx context.Context, userID, id string, prev, next time.Time) (bool, error) {
	var advanced bool
	err := r.do(func(st *state) error {
		rule, err := ownedRule(st, userID, id)
		if err != nil {
			return err
		}
		if !rule.NextDate.Equal(prev) {
			return nil
		}
		rule.NextDate = next
		rule.UpdatedAt = r.now()
		advanced = true
		return nil
	})
	return advanced, err
}

func ownedRule(st *state, userID, id string) (*recurring.Rule, error) {
	rule, ok := st.rules[id]
	if !ok || rule.UserID != userID {
		return nil, recurring.ErrRuleNotFound
	}
	return rule, nil
}
