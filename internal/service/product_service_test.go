package service

import (
	"context"
	"testing"

	"drugbee/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)

	resp, err := svc.Create(ctx, dto.CreateProductRequest{
		Name:       "Dolo 650",
		Batch:      "DL2501",
		ExpiryDate: "2027-06-30",
		MRP:        dec("33.00"),
		Price:      dec("30.00"),
		Stock:      100,
		MinStock:   20,
		CgstRate:   dec("6"),
		SgstRate:   dec("6"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dolo 650", resp.Name)
	assert.True(t, resp.Active)
	assert.Equal(t, 100, resp.Stock)
}

func TestProductService_Create_PriceAboveMRP(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), nil)

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:       "Overpriced",
		Batch:      "X1",
		ExpiryDate: "2027-06-30",
		MRP:        dec("10.00"),
		Price:      dec("12.00"),
	})
	assert.Error(t, err)
}

func TestProductService_Update_PriceValidatedAgainstNewMRP(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Pan 40", "145.00", 10)
	repo := newStubProductRepo(p)
	svc := NewProductService(repo, nil)

	// Raising the price above the stored MRP is rejected
	bad := dec("150.00")
	_, err := svc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &bad})
	assert.Error(t, err)

	// Raising both keeps the invariant
	mrp := dec("160.00")
	price := dec("150.00")
	resp, err := svc.Update(ctx, p.ID, dto.UpdateProductRequest{MRP: &mrp, Price: &price})
	require.NoError(t, err)
	assert.True(t, resp.Price.Equal(dec("150")))
}

func TestProductService_DeactivateReactivate(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Old Line", "10.00", 5)
	repo := newStubProductRepo(p)
	svc := NewProductService(repo, nil)

	require.NoError(t, svc.Deactivate(ctx, p.ID))
	assert.False(t, p.Active)

	require.NoError(t, svc.Reactivate(ctx, p.ID))
	assert.True(t, p.Active)
}

func TestProductService_LookupUnknown(t *testing.T) {
	svc := NewProductService(newStubProductRepo(), nil)

	_, err := svc.Lookup(context.Background(), uuid.New())
	assert.Error(t, err)
}
