package bundle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	bundle      *Bundle
	reservation *Reservation
	adjusts     []int
	inserted    *Reservation
	closed      []int64
}

func (t *fakeTx) BundleForUpdate(context.Context, int64) (*Bundle, error) {
	return t.bundle, nil
}

func (t *fakeTx) AdjustReserved(_ context.Context, _ int64, delta int) error {
	t.adjusts = append(t.adjusts, delta)
	return nil
}

func (t *fakeTx) InsertReservation(_ context.Context, res *Reservation) error {
	t.inserted = res
	return nil
}

func (t *fakeTx) LiveReservation(context.Context, int64, int64) (*Reservation, error) {
	return t.reservation, nil
}

func (t *fakeTx) CloseReservation(_ context.Context, id int64) error {
	t.closed = append(t.closed, id)
	return nil
}

type fakeRepo struct {
	bundle *Bundle
	tx     *fakeTx
}

func (r *fakeRepo) GetByID(context.Context, int64) (*Bundle, error) { return r.bundle, nil }

func (r *fakeRepo) WithinTx(_ context.Context, fn func(TxStore) error) error {
	return fn(r.tx)
}

func sellableBundle() *Bundle {
	return &Bundle{
		ID: 5, Name: "Starter Kit", SKU: "KIT-S", Price: 40.00, SellerID: 4,
		Stock: 10, Reserved: 2, IsActive: true,
		Items: []*Component{{BundleID: 5, VariantID: 7, Quantity: 2}},
	}
}

func TestValidateForOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Bundle) *Bundle
		qty     int
		wantErr error
	}{
		{"sellable", func(b *Bundle) *Bundle { return b }, 2, nil},
		{"exactly the free stock", func(b *Bundle) *Bundle { return b }, 8, nil},
		{"missing", func(*Bundle) *Bundle { return nil }, 1, ErrNotFound},
		{"inactive", func(b *Bundle) *Bundle { b.IsActive = false; return b }, 1, ErrInactive},
		{"no components", func(b *Bundle) *Bundle { b.Items = nil; return b }, 1, ErrUnavailable},
		{"more than free stock", func(b *Bundle) *Bundle { return b }, 9, ErrUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(&fakeRepo{bundle: tc.mutate(sellableBundle())})
			err := svc.ValidateForOrder(context.Background(), 5, tc.qty)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestValidateForOrder_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(&fakeRepo{bundle: sellableBundle()})
	assert.Error(t, svc.ValidateForOrder(context.Background(), 5, 0))
}

func TestReserve(t *testing.T) {
	tx := &fakeTx{bundle: sellableBundle()}
	svc := NewService(&fakeRepo{tx: tx})

	err := svc.Reserve(context.Background(), 5, 3, 11)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, tx.adjusts)
	require.NotNil(t, tx.inserted)
	assert.Equal(t, int64(11), tx.inserted.OrderID)
	assert.Equal(t, 3, tx.inserted.Quantity)
}

func TestReserve_Insufficient(t *testing.T) {
	b := sellableBundle()
	b.Reserved = 9
	tx := &fakeTx{bundle: b}
	svc := NewService(&fakeRepo{tx: tx})

	err := svc.Reserve(context.Background(), 5, 2, 11)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Empty(t, tx.adjusts)
}

func TestRelease(t *testing.T) {
	tx := &fakeTx{reservation: &Reservation{
		ID: 31, OrderID: 11, BundleID: 5, Quantity: 3, State: reservationReserved,
	}}
	svc := NewService(&fakeRepo{tx: tx})

	err := svc.Release(context.Background(), 5, 3, 11)
	require.NoError(t, err)

	assert.Equal(t, []int{-3}, tx.adjusts)
	assert.Equal(t, []int64{31}, tx.closed)
}

func TestRelease_NotReserved(t *testing.T) {
	tx := &fakeTx{}
	svc := NewService(&fakeRepo{tx: tx})

	err := svc.Release(context.Background(), 5, 3, 11)
	assert.ErrorIs(t, err, ErrNotReserved)
	assert.Empty(t, tx.adjusts)
}
