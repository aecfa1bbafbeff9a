package memory

import (
	"context"
	"sort"
	"time"

	"finanzas/internal/domain/category"
)

type categoryRepo struct{ binding }

func (r *categoryRepo) Create(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	var out *category.Category
	err := r.do(func(st *state) error {
		if findCategoryByName(st, params.UserID, params.Name) != nil {
			return category.ErrCategoryExists
		}
		out = insertCategory(st, params, r.now())
		return nil
	})
	return out, err
}

func (r *categoryRepo) FindOrCreate(ctx context.Context, params category.CreateParams) (*category.Category, error) {
	var out *category.Category
	err := r.do(func(st *state) error {
		if c := findCategoryByName(st, params.UserID, params.Name); c != nil {
			cp := *c
			out = &cp
			return nil
		}
		out = insertCategory(st, params, r.now())
		return nil
	})
	return out, err
}

func (r *categoryRepo) GetByID(ctx context.Context, userID, id string) (*category.Category, error) {
	var out *category.Category
	err := r.do(func(st *state) error {
		c, err := ownedCategory(st, userID, id)
		if err != nil {
			return err
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *categoryRepo) ListByUserID(ctx context.Context, userID string) ([]*category.Category, error) {
	var out []*category.Category
	err := r.do(func(st *state) error {
		for _, c := range st.categories {
			if c.UserID == userID {
				cp := *c
				out = append(out, &cp)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *categoryRepo) Update(ctx context.Context, userID, id string, params category.UpdateParams) (*category.Category, error) {
	var out *category.Category
	err := r.do(func(st *state) error {
		c, err := ownedCategory(st, userID, id)
		if err != nil {
			return err
		}
		if params.Name != nil && *params.Name != c.Name {
			if findCategoryByName(st, userID, *params.Name) != nil {
				return category.ErrCategoryExists
			}
			c.Name = *params.Name
		}
		if params.Type != nil {
			c.Type = *params.Type
		}
		if params.Icon != nil {
			c.Icon = *params.Icon
		}
		if params.Color != nil {
			c.Color = *params.Color
		}
		if params.Budget != nil {
			c.Budget = *params.Budget
		}
		c.UpdatedAt = r.now()
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

func (r *categoryRepo) InUse(ctx context.Context, userID, id string) (bool, error) {
	var used bool
	err := r.do(func(st *state) error {
		for _, tx := range st.transactions {
			if tx.UserID == userID && tx.CategoryID == id {
				used = true
				return nil
			}
		}
		for _, rule := range st.rules {
			if rule.UserID == userID && rule.CategoryID == id {
				used = true
				return nil
			}
		}
		return nil
	})
	return used, err
}

func (r *categoryRepo) Delete(ctx context.Context, userID, id string) error {
	return r.do(func(st *state) error {
		if _, err := ownedCategory(st, userID, id); err != nil {
			return err
		}
		delete(st.categories, id)
		return nil
	})
}

func insertCategory(st *state, params category.CreateParams, now time.Time) *category.Category {
	c := &category.Category{
		ID:        params.ID,
		UserID:    params.UserID,
		Name:      params.Name,
		Type:      params.Type,
		Icon:      params.Icon,
		Color:     params.Color,
		Budget:    params.Budget,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.categories[c.ID] = c
	cp := *c
	return &cp
}

func findCategoryByName(st *state, userID, name string) *category.Category {
	for _, c := range st.categories {
		if c.UserID == userID && c.Name == name {
			return c
		}
	}
	return nil
}

func ownedCategory(st *state, userID, id string) (*category.Category, error) {
	c, ok := st.categories[id]
	if !ok || c.UserID != userID {
		return nil, category.ErrCategoryNotFound
	}
	return c, nil
}
