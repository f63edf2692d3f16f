package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MelvinKr/CutlyAI/internal/core/apperror"
	"github.com/MelvinKr/CutlyAI/internal/core/id"
)

// --- Fakes ---

type fakeRepo struct {
	batches   map[id.ID]*Batch
	movements []Movement

	appendErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{batches: map[id.ID]*Batch{}}
}

func (r *fakeRepo) snapshot() *fakeRepo {
	cp := newFakeRepo()
	for k, v := range r.batches {
		b := *v
		cp.batches[k] = &b
	}
	cp.movements = append([]Movement(nil), r.movements...)
	cp.appendErr = r.appendErr
	return cp
}

func (r *fakeRepo) restore(s *fakeRepo) {
	r.batches = s.batches
	r.movements = s.movements
}

func (r *fakeRepo) GetBatch(_ context.Context, tenantID string, batchID id.ID) (*Batch, error) {
	b, ok := r.batches[batchID]
	if !ok || b.TenantID != tenantID {
		return nil, apperror.NewNotFound("batch", batchID.String())
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) FindBatchByCode(_ context.Context, tenantID string, productID id.ID, code string) (*Batch, error) {
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.ProductID == productID && b.BatchCode != nil && *b.BatchCode == code {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) CreateBatch(_ context.Context, b *Batch) error {
	cp := *b
	r.batches[b.ID] = &cp
	return nil
}

func (r *fakeRepo) AddQuantity(_ context.Context, tenantID string, batchID id.ID, delta int64) (int64, error) {
	b, ok := r.batches[batchID]
	if !ok || b.TenantID != tenantID {
		return 0, apperror.NewNotFound("batch", batchID.String())
	}
	if b.QtyOnHand+delta < 0 {
		return 0, ErrWouldGoNegative
	}
	b.QtyOnHand += delta
	return b.QtyOnHand, nil
}

func (r *fakeRepo) AppendMovement(_ context.Context, m *Movement) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeRepo) ListBatches(_ context.Context, tenantID string, productID id.ID) ([]Batch, error) {
	var out []Batch
	for _, b := range r.batches {
		if b.TenantID == tenantID && b.ProductID == productID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListMovements(_ context.Context, tenantID string, productID id.ID, limit int) ([]Movement, error) {
	var out []Movement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.movements[i]
		if m.TenantID == tenantID && m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) LotsForProducts(_ context.Context, tenantID string, productIDs []id.ID) ([]Lot, error) {
	var out []Lot
	for _, pid := range productIDs {
		for _, b := range r.batches {
			if b.TenantID == tenantID && b.ProductID == pid {
				out = append(out, Lot{ProductID: b.ProductID, QtyOnHand: b.QtyOnHand, ExpDate: b.ExpDate})
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) SumMovements(_ context.Context, tenantID string, batchID id.ID) (int64, error) {
	var sum int64
	for _, m := range r.movements {
		if m.TenantID == tenantID && m.BatchID == batchID {
			sum += m.Qty
		}
	}
	return sum, nil
}

// fakeTxManager snapshots the repo before the callback and restores it when
// the callback fails, mimicking a rollback.
type fakeTxManager struct {
	repo *fakeRepo
}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := m.repo.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(snap)
		return err
	}
	return nil
}

func (m *fakeTxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestLedger(t *testing.T) (*Ledger, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	return NewLedger(repo, &fakeTxManager{repo: repo}, nil), repo
}

func seedBatch(repo *fakeRepo, tenantID string, productID id.ID, qty int64) *Batch {
	b := &Batch{
		ID:        id.New(),
		TenantID:  tenantID,
		ProductID: productID,
		QtyOnHand: qty,
	}
	repo.batches[b.ID] = b
	return b
}

// --- Receive ---

func TestReceive_NewBatch(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()

	batch, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchCode: "LOT-42"}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(10), batch.QtyOnHand)
	require.NotNil(t, batch.BatchCode)
	assert.Equal(t, "LOT-42", *batch.BatchCode)

	require.Len(t, repo.movements, 1)
	m := repo.movements[0]
	assert.Equal(t, MovementIN, m.Type)
	assert.Equal(t, int64(10), m.Qty)
	assert.Equal(t, "reception", m.Reason)
	assert.Equal(t, batch.ID, m.BatchID)
}

func TestReceive_ExistingBatchByCode(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()

	first, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchCode: "LOT-42"}, 4)
	require.NoError(t, err)

	second, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchCode: "LOT-42"}, 6)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(10), second.QtyOnHand)
	assert.Len(t, repo.batches, 1)
	assert.Len(t, repo.movements, 2)
}

func TestReceive_ExistingBatchByID(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 3)

	got, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchID: &batch.ID}, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.QtyOnHand)
}

func TestReceive_UnknownBatchID(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	missing := id.New()

	_, err := ledger.Receive(ctx, "t1", id.New(), BatchInput{BatchID: &missing}, 5)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, repo.movements)
}

func TestReceive_RejectsNonPositiveQty(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()

	for _, qty := range []int64{0, -5} {
		_, err := ledger.Receive(ctx, "t1", id.New(), BatchInput{}, qty)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	}
	assert.Empty(t, repo.batches)
	assert.Empty(t, repo.movements)
}

func TestReceive_MovementFailureRollsBackQuantity(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 3)

	repo.appendErr = errors.New("movement insert failed")

	_, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchID: &batch.ID}, 7)
	require.Error(t, err)

	got, err := repo.GetBatch(ctx, "t1", batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.QtyOnHand, "quantity must not change when the movement write fails")
	assert.Empty(t, repo.movements)
}

// --- Adjust ---

func TestAdjust_NegativeDelta(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 10)

	got, err := ledger.Adjust(ctx, "t1", productID, batch.ID, -3, "casse")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.QtyOnHand)

	require.Len(t, repo.movements, 1)
	assert.Equal(t, MovementADJUST, repo.movements[0].Type)
	assert.Equal(t, int64(-3), repo.movements[0].Qty)
	assert.Equal(t, "casse", repo.movements[0].Reason)
}

func TestAdjust_DefaultReason(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 10)

	_, err := ledger.Adjust(ctx, "t1", productID, batch.ID, 1, "")
	require.NoError(t, err)
	assert.Equal(t, "ajustement", repo.movements[0].Reason)
}

func TestAdjust_RejectsBelowZero(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 7)

	_, err := ledger.Adjust(ctx, "t1", productID, batch.ID, -10, "")
	require.Error(t, err)
	assert.True(t, apperror.IsNegativeStock(err))

	got, gerr := repo.GetBatch(ctx, "t1", batch.ID)
	require.NoError(t, gerr)
	assert.Equal(t, int64(7), got.QtyOnHand, "rejected adjustment must leave quantity unchanged")
	assert.Empty(t, repo.movements, "rejected adjustment must append no movement")
}

func TestAdjust_RejectsZeroDelta(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	batch := seedBatch(repo, "t1", id.New(), 5)

	_, err := ledger.Adjust(ctx, "t1", batch.ProductID, batch.ID, 0, "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, repo.movements)
}

func TestLedger_ReceiveThenAdjustScenario(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()

	batch, err := ledger.Receive(ctx, "t1", productID, BatchInput{BatchCode: "LOT-1"}, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), batch.QtyOnHand)

	batch, err = ledger.Adjust(ctx, "t1", productID, batch.ID, -3, "perte")
	require.NoError(t, err)
	assert.Equal(t, int64(7), batch.QtyOnHand)

	_, err = ledger.Adjust(ctx, "t1", productID, batch.ID, -10, "perte")
	require.Error(t, err)
	assert.True(t, apperror.IsNegativeStock(err))

	// State unchanged by the rejected adjustment: quantity 7, two movements.
	onHand, sum, err := ledger.Reconcile(ctx, "t1", batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), onHand)
	assert.Equal(t, int64(7), sum)
	assert.Len(t, repo.movements, 2)
}

func TestMovements_ClampsLimit(t *testing.T) {
	ledger, repo := newTestLedger(t)
	ctx := context.Background()
	productID := id.New()
	batch := seedBatch(repo, "t1", productID, 1000)

	for i := 0; i < 3; i++ {
		_, err := ledger.Adjust(ctx, "t1", productID, batch.ID, 1, "recount")
		require.NoError(t, err)
	}

	movements, err := ledger.Movements(ctx, "t1", productID, -1)
	require.NoError(t, err)
	assert.Len(t, movements, 3)

	movements, err = ledger.Movements(ctx, "t1", productID, 2)
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}
