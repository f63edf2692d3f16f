package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

func TestProject_AggregatesLots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	productID := id.New()
	soon := now.Add(10 * 24 * time.Hour)
	far := now.Add(90 * 24 * time.Hour)

	lots := []Lot{
		{ProductID: productID, QtyOnHand: 4, ExpDate: &soon},
		{ProductID: productID, QtyOnHand: 6, ExpDate: &far},
	}

	result := Project([]id.ID{productID}, lots, now)

	require.Contains(t, result, productID)
	assert.Equal(t, int64(10), result[productID].StockTotal)
	assert.Equal(t, 1, result[productID].ExpiringCount)
}

func TestProject_OrderIndependent(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p1, p2 := id.New(), id.New()
	soon := now.Add(24 * time.Hour)

	lots := []Lot{
		{ProductID: p1, QtyOnHand: 3},
		{ProductID: p2, QtyOnHand: 5, ExpDate: &soon},
		{ProductID: p1, QtyOnHand: 2},
	}
	reversed := []Lot{lots[2], lots[1], lots[0]}

	a := Project([]id.ID{p1, p2}, lots, now)
	b := Project([]id.ID{p2, p1}, reversed, now)

	assert.Equal(t, a, b)

	// Recomputing from the same inputs changes nothing.
	assert.Equal(t, a, Project([]id.ID{p1, p2}, lots, now))
}

func TestProject_MissingProductsZeroFilled(t *testing.T) {
	now := time.Now().UTC()
	p1, p2 := id.New(), id.New()

	result := Project([]id.ID{p1, p2}, []Lot{{ProductID: p1, QtyOnHand: 1}}, now)

	assert.Equal(t, Projection{StockTotal: 1}, result[p1])
	assert.Equal(t, Projection{}, result[p2])
}

func TestProject_ExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	productID := id.New()

	atHorizon := now.Add(ExpiryHorizon)
	pastHorizon := now.Add(ExpiryHorizon + time.Second)
	expired := now.Add(-24 * time.Hour)

	tests := []struct {
		name    string
		expDate *time.Time
		want    int
	}{
		{"no expiry date", nil, 0},
		{"already expired", &expired, 1},
		{"exactly at horizon", &atHorizon, 1},
		{"just past horizon", &pastHorizon, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lots := []Lot{{ProductID: productID, QtyOnHand: 1, ExpDate: tt.expDate}}
			result := Project([]id.ID{productID}, lots, now)
			assert.Equal(t, tt.want, result[productID].ExpiringCount)
		})
	}
}

func TestForProducts_DeduplicatesIDs(t *testing.T) {
	repo := newFakeRepo()
	productID := id.New()
	seedBatch(repo, "t1", productID, 8)

	reader := NewProjectionReader(repo, func() time.Time {
		return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	})

	result, err := reader.ForProducts(context.Background(), "t1", []id.ID{productID, productID})
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, int64(8), result[productID].StockTotal)
}

func TestForProducts_EmptyInput(t *testing.T) {
	reader := NewProjectionReader(newFakeRepo(), nil)

	result, err := reader.ForProducts(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}
