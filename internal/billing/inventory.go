package billing

import (
	"time"

	"drugbee/internal/model"
)

// ApplyDeduction returns a copy of products with the sale's quantities
// deducted, floor-clamped at zero. Products not referenced by any line pass
// through unchanged. This is the pure projection of the inventory
// synchronizer; the transactional variant lives in the sale repository.
//
// Calling this twice for the same sale deducts twice — dedup is the caller's
// responsibility (the service layer dedups by draft id).
func ApplyDeduction(products []model.Product, sale *model.Sale) []model.Product {
	deduct := make(map[string]int, len(sale.Items))
	for i := range sale.Items {
		deduct[sale.Items[i].ProductID.String()] += sale.Items[i].Quantity
	}

	out := make([]model.Product, len(products))
	copy(out, products)
	now := time.Now()
	for i := range out {
		qty, ok := deduct[out[i].ID.String()]
		if !ok {
			continue
		}
		out[i].Stock -= qty
		if out[i].Stock < 0 {
			out[i].Stock = 0
		}
		out[i].UpdatedAt = now
	}
	return out
}
