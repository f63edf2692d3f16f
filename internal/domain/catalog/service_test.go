package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/events"
)

// fakeProductRepo is an in-memory catalog.Repository.
type fakeProductRepo struct {
	products map[id.ID]*Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[id.ID]*Product{}}
}

func (r *fakeProductRepo) Create(_ context.Context, p *Product) error {
	for _, existing := range r.products {
		if existing.TenantID == p.TenantID && existing.SKU == p.SKU {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateBySKU(_ context.Context, p *Product) error {
	for pid, existing := range r.products {
		if existing.TenantID == p.TenantID && existing.SKU == p.SKU {
			cp := *p
			cp.ID = pid
			r.products[pid] = &cp
			return nil
		}
	}
	return apperror.NewNotFound("product", p.SKU)
}

func (r *fakeProductRepo) InsertMany(ctx context.Context, products []*Product) error {
	for _, p := range products {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, tenantID string, productID id.ID) (*Product, error) {
	p, ok := r.products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindBySKU(_ context.Context, tenantID, sku string) (*Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) ExistingSKUs(_ context.Context, tenantID string, skus []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, sku := range skus {
		for _, p := range r.products {
			if p.TenantID == tenantID && p.SKU == sku {
				out[sku] = true
			}
		}
	}
	return out, nil
}

func (r *fakeProductRepo) SetActive(_ context.Context, tenantID string, productID id.ID, active bool) error {
	p, ok := r.products[productID]
	if !ok || p.TenantID != tenantID {
		return apperror.NewNotFound("product", productID.String())
	}
	p.IsActive = active
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, tenantID string, filter ListFilter) (ListResult, error) {
	result := ListResult{Limit: filter.Limit, Offset: filter.Offset}
	for _, p := range r.products {
		if p.TenantID != tenantID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		result.Items = append(result.Items, *p)
		result.TotalCount++
	}
	return result, nil
}

// capturePublisher records published events.
type capturePublisher struct {
	events []events.Event
}

func (c *capturePublisher) Publish(_ context.Context, e events.Event) {
	c.events = append(c.events, e)
}

func validProduct(tenantID string) *Product {
	p := NewProduct(tenantID, "sku-001", "Shampoing Doux")
	p.Category = string(CategoryShampoo)
	p.RetailPrice = decimal.RequireFromString("9.90")
	p.CostPrice = decimal.RequireFromString("4.00")
	return p
}

func TestCreate_NormalizesSKU(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)

	p := validProduct("t1")
	p.SKU = "  abc-12  "

	require.NoError(t, svc.Create(context.Background(), p))
	assert.Equal(t, "ABC-12", p.SKU)
}

func TestCreate_DuplicateSKU(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, validProduct("t1")))

	err := svc.Create(ctx, validProduct("t1"))
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestCreate_SameSKUDifferentTenants(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, validProduct("t1")))
	require.NoError(t, svc.Create(ctx, validProduct("t2")))
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Product)
	}{
		{"sku too short", func(p *Product) { p.SKU = "x" }},
		{"name too short", func(p *Product) { p.Name = "a" }},
		{"missing category", func(p *Product) { p.Category = "" }},
		{"negative retail price", func(p *Product) { p.RetailPrice = decimal.NewFromInt(-1) }},
		{"tax rate above cap", func(p *Product) { p.TaxRate = decimal.RequireFromString("0.31") }},
		{"negative threshold", func(p *Product) { p.MinStockThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeProductRepo()
			svc := NewService(repo, nil)

			p := validProduct("t1")
			tt.mutate(p)

			err := svc.Create(context.Background(), p)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
			assert.Empty(t, repo.products)
		})
	}
}

func TestCreate_PublishesInsertEvent(t *testing.T) {
	repo := newFakeProductRepo()
	feed := &capturePublisher{}
	svc := NewService(repo, feed)

	require.NoError(t, svc.Create(context.Background(), validProduct("t1")))

	require.Len(t, feed.events, 1)
	assert.Equal(t, events.EventInsert, feed.events[0].Type)
	assert.Equal(t, Table, feed.events[0].Table)
	assert.Equal(t, "t1", feed.events[0].TenantID)
}

func TestUpdate_KeepingOwnSKU(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	p := validProduct("t1")
	require.NoError(t, svc.Create(ctx, p))

	p.Name = "Shampoing Très Doux"
	require.NoError(t, svc.Update(ctx, p), "keeping its own sku must not count as duplicate")
}

func TestUpdate_TakingAnotherProductsSKU(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first := validProduct("t1")
	require.NoError(t, svc.Create(ctx, first))

	second := validProduct("t1")
	second.SKU = "SKU-002"
	require.NoError(t, svc.Create(ctx, second))

	second.SKU = first.SKU
	err := svc.Update(ctx, second)
	require.Error(t, err)
	assert.True(t, apperror.IsDuplicate(err))
}

func TestArchiveAndRestore(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	p := validProduct("t1")
	require.NoError(t, svc.Create(ctx, p))

	require.NoError(t, svc.Archive(ctx, "t1", p.ID))
	got, err := svc.Get(ctx, "t1", p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	require.NoError(t, svc.Restore(ctx, "t1", p.ID))
	got, err = svc.Get(ctx, "t1", p.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestArchive_UnknownProduct(t *testing.T) {
	svc := NewService(newFakeProductRepo(), nil)

	err := svc.Archive(context.Background(), "t1", id.New())
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGet_WrongTenant(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	p := validProduct("t1")
	require.NoError(t, svc.Create(ctx, p))

	_, err := svc.Get(ctx, "t2", p.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
