package service

import (
	"context"
	"testing"

	"drugbee/internal/billing"
	"drugbee/internal/dto"
	"drugbee/internal/model"
	"drugbee/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftFixture(products ...*model.Product) (DraftService, repository.DraftStore) {
	prodRepo := newStubProductRepo(products...)
	drafts := repository.NewMemoryDraftStore()
	return NewDraftService(drafts, prodRepo, dec("12")), drafts
}

func TestDraftService_StartAndGet(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDraftFixture()

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	assert.Empty(t, started.Items)
	assert.True(t, started.Totals.Total.IsZero())

	id, err := uuid.Parse(started.ID)
	require.NoError(t, err)

	got, err := svc.GetDraft(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, started.ID, got.ID)
}

func TestDraftService_GetUnknown(t *testing.T) {
	svc, _ := newDraftFixture()

	_, err := svc.GetDraft(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestDraftService_AddItemAndTotals(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Dolo 650", "33.33", 50)
	svc, _ := newDraftFixture(p)

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	resp, err := svc.AddItem(ctx, id, dto.AddItemRequest{ProductID: p.ID.String(), Quantity: 3})
	require.NoError(t, err)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
	assert.True(t, resp.Items[0].LineTotal.Equal(dec("99.99")))

	// Totals in the response are rounded for display
	assert.Equal(t, "99.99", resp.Totals.Subtotal.StringFixed(2))
	assert.Equal(t, "111.99", resp.Totals.Total.StringFixed(2))
}

func TestDraftService_AddItem_SurvivesReload(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Pan 40", "145.00", 10)
	svc, _ := newDraftFixture(p)

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	_, err = svc.AddItem(ctx, id, dto.AddItemRequest{ProductID: p.ID.String(), Quantity: 2})
	require.NoError(t, err)

	// A fresh load (new request) sees the stored line
	got, err := svc.GetDraft(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestDraftService_AddItem_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Azithral", "119.50", 2)
	svc, _ := newDraftFixture(p)

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	_, err = svc.AddItem(ctx, id, dto.AddItemRequest{ProductID: p.ID.String(), Quantity: 5})
	assert.ErrorIs(t, err, billing.ErrInsufficientStock)

	got, err := svc.GetDraft(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.Items, "rejected add leaves the stored draft unchanged")
}

func TestDraftService_UpdateQuantityAndRemove(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Cetrizine", "22.00", 30)
	svc, _ := newDraftFixture(p)

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	_, err = svc.AddItem(ctx, id, dto.AddItemRequest{ProductID: p.ID.String(), Quantity: 2})
	require.NoError(t, err)

	resp, err := svc.UpdateQuantity(ctx, id, 0, dto.UpdateQuantityRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, id, 3, dto.UpdateQuantityRequest{Quantity: 1})
	assert.ErrorIs(t, err, billing.ErrLineNotFound)

	// Zero removes the line
	resp, err = svc.UpdateQuantity(ctx, id, 0, dto.UpdateQuantityRequest{Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestDraftService_SetDiscount(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Dolo 650", "100.00", 10)
	svc, _ := newDraftFixture(p)

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	_, err = svc.AddItem(ctx, id, dto.AddItemRequest{ProductID: p.ID.String(), Quantity: 3})
	require.NoError(t, err)

	resp, err := svc.SetDiscount(ctx, id, dto.SetDiscountRequest{DiscountPct: dec("10")})
	require.NoError(t, err)
	assert.Equal(t, "302.40", resp.Totals.Total.StringFixed(2))

	_, err = svc.SetDiscount(ctx, id, dto.SetDiscountRequest{DiscountPct: dec("101")})
	assert.ErrorIs(t, err, billing.ErrInvalidDiscount)
}

func TestDraftService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDraftFixture()

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	email := "ravi@example.com"
	doctor := "Dr. Mehta"
	follow := "2026-09-15"
	resp, err := svc.UpdateCustomer(ctx, id, dto.UpdateDraftCustomerRequest{
		CustomerName:  "Ravi Kumar",
		CustomerPhone: "9876543210",
		CustomerEmail: &email,
		DoctorName:    &doctor,
		PaymentMethod: "upi",
		FollowUpDate:  &follow,
	})
	require.NoError(t, err)

	assert.Equal(t, "Ravi Kumar", resp.CustomerName)
	assert.Equal(t, "upi", resp.PaymentMethod)
	require.NotNil(t, resp.CustomerEmail)
	assert.Equal(t, email, *resp.CustomerEmail)
}

func TestDraftService_Discard(t *testing.T) {
	ctx := context.Background()
	svc, _ := newDraftFixture()

	started, err := svc.StartDraft(ctx)
	require.NoError(t, err)
	id, _ := uuid.Parse(started.ID)

	require.NoError(t, svc.DiscardDraft(ctx, id))

	_, err = svc.GetDraft(ctx, id)
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}
