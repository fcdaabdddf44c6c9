package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjustment struct {
	availableDelta int
	reservedDelta  int
}

type fakeTx struct {
	stock       *Stock
	reservation *Reservation
	adjusts     []adjustment
	inserted    *Reservation
	states      []ReservationState
}

func (t *fakeTx) StockForUpdate(context.Context, int64, int64) (*Stock, error) {
	return t.stock, nil
}

func (t *fakeTx) AdjustStock(_ context.Context, _, _ int64, availableDelta, reservedDelta int) error {
	t.adjusts = append(t.adjusts, adjustment{availableDelta, reservedDelta})
	return nil
}

func (t *fakeTx) InsertReservation(_ context.Context, res *Reservation) error {
	t.inserted = res
	return nil
}

func (t *fakeTx) LiveReservation(context.Context, int64, int64, int64) (*Reservation, error) {
	return t.reservation, nil
}

func (t *fakeTx) SetReservationState(_ context.Context, _ int64, state ReservationState) error {
	t.states = append(t.states, state)
	return nil
}

type fakeRepo struct {
	tx       *fakeTx
	location int64
}

func (r *fakeRepo) FindFulfillmentLocation(context.Context, int64, int) (int64, error) {
	return r.location, nil
}

func (r *fakeRepo) ReservedLocation(context.Context, int64) (int64, error) {
	return r.location, nil
}

func (r *fakeRepo) StockLevels(context.Context, int64) ([]*Stock, error) { return nil, nil }

func (r *fakeRepo) WithinTx(_ context.Context, fn func(TxStore) error) error {
	return fn(r.tx)
}

func newFixture(stock *Stock, res *Reservation) (*fakeTx, Service) {
	tx := &fakeTx{stock: stock, reservation: res}
	return tx, NewService(&fakeRepo{tx: tx, location: 3})
}

func TestReserve(t *testing.T) {
	tx, svc := newFixture(&Stock{VariantID: 7, LocationID: 3, Available: 10, Reserved: 4}, nil)

	err := svc.Reserve(context.Background(), 7, 3, 2, 11)
	require.NoError(t, err)

	require.Len(t, tx.adjusts, 1)
	assert.Equal(t, adjustment{0, 2}, tx.adjusts[0], "reserving holds stock without consuming it")

	require.NotNil(t, tx.inserted)
	assert.Equal(t, int64(11), tx.inserted.OrderID)
	assert.Equal(t, 2, tx.inserted.Quantity)
	assert.Equal(t, ReservationReserved, tx.inserted.State)
}

func TestReserve_InsufficientFreeStock(t *testing.T) {
	// 10 on hand but 9 already held leaves only 1 free.
	tx, svc := newFixture(&Stock{VariantID: 7, LocationID: 3, Available: 10, Reserved: 9}, nil)

	err := svc.Reserve(context.Background(), 7, 3, 2, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Empty(t, tx.adjusts)
	assert.Nil(t, tx.inserted)
}

func TestReserve_NoStockRow(t *testing.T) {
	_, svc := newFixture(nil, nil)

	err := svc.Reserve(context.Background(), 7, 3, 1, 11)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRelease(t *testing.T) {
	tx, svc := newFixture(nil, &Reservation{
		ID: 21, OrderID: 11, VariantID: 7, LocationID: 3,
		Quantity: 3, State: ReservationReserved,
	})

	// Requested quantity disagrees with the hold; the hold's quantity wins.
	err := svc.Release(context.Background(), 7, 3, 2, 11)
	require.NoError(t, err)

	require.Len(t, tx.adjusts, 1)
	assert.Equal(t, adjustment{0, -3}, tx.adjusts[0])
	assert.Equal(t, []ReservationState{ReservationReleased}, tx.states)
}

func TestRelease_NotReserved(t *testing.T) {
	tx, svc := newFixture(nil, nil)

	err := svc.Release(context.Background(), 7, 3, 2, 11)
	assert.ErrorIs(t, err, ErrNotReserved)
	assert.Empty(t, tx.adjusts)
}

func TestFulfill(t *testing.T) {
	tx, svc := newFixture(nil, &Reservation{
		ID: 21, OrderID: 11, VariantID: 7, LocationID: 3,
		Quantity: 2, State: ReservationReserved,
	})

	err := svc.Fulfill(context.Background(), 7, 3, 2, 11)
	require.NoError(t, err)

	require.Len(t, tx.adjusts, 1)
	assert.Equal(t, adjustment{-2, -2}, tx.adjusts[0], "fulfillment consumes both counters")
	assert.Equal(t, []ReservationState{ReservationFulfilled}, tx.states)
}

func TestFulfill_NotReserved(t *testing.T) {
	_, svc := newFixture(nil, nil)

	err := svc.Fulfill(context.Background(), 7, 3, 2, 11)
	assert.ErrorIs(t, err, ErrNotReserved)
}

func TestFindFulfillmentLocation_RejectsNonPositiveQuantity(t *testing.T) {
	_, svc := newFixture(nil, nil)

	_, err := svc.FindFulfillmentLocation(context.Background(), 7, 0)
	assert.Error(t, err)
}
