package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/georgemunganga/stockly-pos/internal/modules/catalog"
	"github.com/google/uuid"
)

type catalogRepo struct{ s *Store }

func (r catalogRepo) Create(_ context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateSKU, p.SKU)
		}
	}
	now := r.s.now()
	p.Version = 1
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.products[p.ID] = *p
	return nil
}

func (r catalogRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, &catalog.NotFoundError{ProductID: id}
	}
	return &p, nil
}

func (r catalogRepo) CurrentStock(ctx context.Context, id uuid.UUID) (int, error) {
	p, err := r.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

func (r catalogRepo) List(_ context.Context, category string) ([]*catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*catalog.Product
	for _, p := range r.s.products {
		if category != "" && p.Category != category {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r catalogRepo) Update(_ context.Context, p *catalog.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.products[p.ID]
	if !ok {
		return &catalog.NotFoundError{ProductID: p.ID}
	}
	if current.Version != p.Version {
		return &catalog.ConcurrentModificationError{ProductID: p.ID, Expected: p.Version, Actual: current.Version}
	}
	for id, existing := range r.s.products {
		if id != p.ID && existing.SKU == p.SKU {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateSKU, p.SKU)
		}
	}
	p.Version++
	p.CreatedAt = current.CreatedAt
	p.UpdatedAt = r.s.now()
	r.s.products[p.ID] = *p
	return nil
}

func (r catalogRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return &catalog.NotFoundError{ProductID: id}
	}
	delete(r.s.products, id)
	return nil
}

func (r catalogRepo) CreateCategory(_ context.Context, c *catalog.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateCategory, c.Name)
		}
	}
	c.CreatedAt = r.s.now()
	r.s.categories[c.ID] = *c
	return nil
}

func (r catalogRepo) ListCategories(_ context.Context) ([]*catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*catalog.Category
	for _, c := range r.s.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r catalogRepo) RenameCategory(_ context.Context, oldName, newName string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var target *catalog.Category
	for id, c := range r.s.categories {
		if c.Name == newName {
			return fmt.Errorf("%w: %s", catalog.ErrDuplicateCategory, newName)
		}
		if c.Name == oldName {
			c := r.s.categories[id]
			target = &c
		}
	}
	if target == nil {
		return fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, oldName)
	}
	target.Name = newName
	r.s.categories[target.ID] = *target

	now := r.s.now()
	for id, p := range r.s.products {
		if p.Category == oldName {
			p.Category = newName
			p.Version++
			p.UpdatedAt = now
			r.s.products[id] = p
		}
	}
	return nil
}

func (r catalogRepo) DeleteCategory(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return fmt.Errorf("%w: %s", catalog.ErrCategoryNotFound, id)
	}
	delete(r.s.categories, id)
	return nil
}
