package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
	"github.com/MelvinKr/CutlyAI/internal/domain/catalog"
)

// fakeCatalogRepo is an in-memory catalog.Repository with failure injection
// for the bulk insert path.
type fakeCatalogRepo struct {
	products map[id.ID]*catalog.Product

	insertManyErr error
	createErrFor  map[string]error // keyed by SKU
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products:     map[id.ID]*catalog.Product{},
		createErrFor: map[string]error{},
	}
}

func (r *fakeCatalogRepo) Create(_ context.Context, p *catalog.Product) error {
	if err := r.createErrFor[p.SKU]; err != nil {
		return err
	}
	for _, existing := range r.products {
		if existing.TenantID == p.TenantID && existing.SKU == p.SKU {
			return apperror.NewDuplicate("product", "sku", p.SKU)
		}
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) Update(_ context.Context, p *catalog.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeCatalogRepo) UpdateBySKU(_ context.Context, p *catalog.Product) error {
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

func (r *fakeCatalogRepo) InsertMany(ctx context.Context, products []*catalog.Product) error {
	if r.insertManyErr != nil {
		return r.insertManyErr
	}
	for _, p := range products {
		if err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, tenantID string, productID id.ID) (*catalog.Product, error) {
	p, ok := r.products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (r *fakeCatalogRepo) FindBySKU(_ context.Context, tenantID, sku string) (*catalog.Product, error) {
	for _, p := range r.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeCatalogRepo) ExistingSKUs(_ context.Context, tenantID string, skus []string) (map[string]bool, error) {
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

func (r *fakeCatalogRepo) SetActive(_ context.Context, tenantID string, productID id.ID, active bool) error {
	p, ok := r.products[productID]
	if !ok || p.TenantID != tenantID {
		return apperror.NewNotFound("product", productID.String())
	}
	p.IsActive = active
	return nil
}

func (r *fakeCatalogRepo) List(_ context.Context, tenantID string, _ catalog.ListFilter) (catalog.ListResult, error) {
	var result catalog.ListResult
	for _, p := range r.products {
		if p.TenantID == tenantID {
			result.Items = append(result.Items, *p)
			result.TotalCount++
		}
	}
	return result, nil
}

func (r *fakeCatalogRepo) bySKU(sku string) *catalog.Product {
	for _, p := range r.products {
		if p.SKU == sku {
			return p
		}
	}
	return nil
}

func validRow(sku, name string) Row {
	return Row{
		SKU:         sku,
		Name:        name,
		Category:    "shampoings",
		RetailPrice: "9.90",
		CostPrice:   "4.00",
	}
}

func TestBulkUpsert_CreatesAndUpdates(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	existing := catalog.NewProduct("t1", "SKU-1", "Ancien Nom")
	existing.Category = "soins"
	repo.products[existing.ID] = existing

	rows := []Row{
		validRow("SKU-1", "Nouveau Nom"),
		validRow("SKU-2", "Coloration Intense"),
	}

	report, err := svc.BulkUpsert(ctx, "t1", rows)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Empty(t, report.Errors)

	updated := repo.bySKU("SKU-1")
	require.NotNil(t, updated)
	assert.Equal(t, "Nouveau Nom", updated.Name)
	assert.NotNil(t, repo.bySKU("SKU-2"))
}

func TestBulkUpsert_InvalidRowDoesNotAbortBatch(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewService(repo, nil)

	rows := []Row{
		validRow("SKU-1", "Premier"),
		validRow("", "Sans SKU"),
		validRow("SKU-3", "Troisième"),
	}

	report, err := svc.BulkUpsert(context.Background(), "t1", rows)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Updated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index)
}

func TestBulkUpsert_AccountingIdentity(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	existing := catalog.NewProduct("t1", "SKU-2", "Existant")
	existing.Category = "soins"
	repo.products[existing.ID] = existing

	rows := []Row{
		validRow("SKU-1", "Nouveau"),
		validRow("SKU-2", "Mis à jour"),
		validRow("", "Invalide"),
		{SKU: "SKU-4", Name: "Prix cassé", Category: "soins", RetailPrice: "not-a-number"},
	}

	report, err := svc.BulkUpsert(ctx, "t1", rows)
	require.NoError(t, err)

	assert.Equal(t, len(rows), report.Created+report.Updated+len(report.Errors))
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Len(t, report.Errors, 2)
}

func TestBulkUpsert_ChunkFailureFallsBackPerRow(t *testing.T) {
	repo := newFakeCatalogRepo()
	repo.insertManyErr = errors.New("bulk insert failed")
	repo.createErrFor["SKU-2"] = apperror.NewDuplicate("product", "sku", "SKU-2")

	svc := NewService(repo, nil)

	rows := []Row{
		validRow("SKU-1", "Premier"),
		validRow("SKU-2", "Refusé"),
		validRow("SKU-3", "Troisième"),
	}

	report, err := svc.BulkUpsert(context.Background(), "t1", rows)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Created, "rows that individually succeed must survive a failing chunk")
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.NotNil(t, repo.bySKU("SKU-1"))
	assert.Nil(t, repo.bySKU("SKU-2"))
	assert.NotNil(t, repo.bySKU("SKU-3"))
}

func TestBulkUpsert_InFileDuplicateSKU(t *testing.T) {
	repo := newFakeCatalogRepo()
	svc := NewService(repo, nil)

	rows := []Row{
		validRow("SKU-1", "Première occurrence"),
		validRow("sku-1", "Seconde occurrence"),
	}

	report, err := svc.BulkUpsert(context.Background(), "t1", rows)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Updated)
	assert.Empty(t, report.Errors)

	final := repo.bySKU("SKU-1")
	require.NotNil(t, final)
	assert.Equal(t, "Seconde occurrence", final.Name)
}

func TestBulkUpsert_EmptyInput(t *testing.T) {
	svc := NewService(newFakeCatalogRepo(), nil)

	report, err := svc.BulkUpsert(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 0, report.Updated)
	assert.Empty(t, report.Errors)
}

func TestBulkUpsert_RequiresTenant(t *testing.T) {
	svc := NewService(newFakeCatalogRepo(), nil)

	_, err := svc.BulkUpsert(context.Background(), "", []Row{validRow("SKU-1", "Produit")})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
