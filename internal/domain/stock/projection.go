package stock

import (
	"context"
	"time"

	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// ExpiryHorizon is the window within which a batch counts as expiring soon.
const ExpiryHorizon = 30 * 24 * time.Hour

// Projection is the derived, non-persisted stock aggregate for one product.
type Projection struct {
	StockTotal    int64 `json:"stockTotal"`
	ExpiringCount int   `json:"expiringCount"`
}

// Project folds batch lots into per-product projections. Pure function of
// its inputs: same lots and clock always produce the same map, regardless of
// row order. Products appearing in ids but owning no lots map to zero values.
func Project(ids []id.ID, lots []Lot, now time.Time) map[id.ID]Projection {
	result := make(map[id.ID]Projection, len(ids))
	for _, pid := range ids {
		if _, ok := result[pid]; !ok {
			result[pid] = Projection{}
		}
	}

	horizon := now.Add(ExpiryHorizon)
	for _, lot := range lots {
		p := result[lot.ProductID]
		p.StockTotal += lot.QtyOnHand
		if lot.ExpDate != nil && !lot.ExpDate.After(horizon) {
			p.ExpiringCount++
		}
		result[lot.ProductID] = p
	}

	return result
}

// ProjectionReader computes projections over the store.
type ProjectionReader struct {
	repo Repository
	now  func() time.Time
}

// NewProjectionReader creates a reader. A nil clock defaults to time.Now.
func NewProjectionReader(repo Repository, now func() time.Time) *ProjectionReader {
	if now == nil {
		now = time.Now
	}
	return &ProjectionReader{repo: repo, now: now}
}

// ForProducts computes the projection for the given product ids in a single
// batch query (no per-product round trips). Duplicate ids are tolerated.
func (r *ProjectionReader) ForProducts(ctx context.Context, tenantID string, ids []id.ID) (map[id.ID]Projection, error) {
	if len(ids) == 0 {
		return map[id.ID]Projection{}, nil
	}

	seen := make(map[id.ID]bool, len(ids))
	unique := make([]id.ID, 0, len(ids))
	for _, pid := range ids {
		if !seen[pid] {
			seen[pid] = true
			unique = append(unique, pid)
		}
	}

	lots, err := r.repo.LotsForProducts(ctx, tenantID, unique)
	if err != nil {
		return nil, err
	}

	return Project(unique, lots, r.now().UTC()), nil
}
