package service

import (
	"context"
	"testing"
	"time"

	"drugbee/internal/billing"
	"drugbee/internal/dto"
	"drugbee/internal/model"
	"drugbee/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository for testing.
type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo(products ...*model.Product) *stubProductRepo {
	r := &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) Search(_ context.Context, _ string) ([]model.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	return nil, 0, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context) ([]model.Product, error) { return nil, nil }

func (r *stubProductRepo) ExpiringBefore(_ context.Context, _ time.Time) ([]model.Product, error) {
	return nil, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) DeductStockTx(_ *gorm.DB, id uuid.UUID, qty int) (int64, error) {
	p, ok := r.products[id]
	if !ok || p.Stock < qty {
		// Guard failed: no row matched stock >= qty
		return 0, nil
	}
	p.Stock -= qty
	return 1, nil
}

func (r *stubProductRepo) RestoreStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	if p, ok := r.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

func (r *stubProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	if p, ok := r.products[id]; ok {
		p.Stock += delta
		if p.Stock < 0 {
			p.Stock = 0
		}
	}
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// stubSaleRepo is an in-memory SaleRepository with a fake bill sequence and
// a unique index on draft_id.
type stubSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	draftIdx map[uuid.UUID]*model.Sale
	seq      int64
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{
		sales:    make(map[uuid.UUID]*model.Sale),
		draftIdx: make(map[uuid.UUID]*model.Sale),
	}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if _, dup := r.draftIdx[s.DraftID]; dup {
		return gorm.ErrDuplicatedKey
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = s
	r.draftIdx[s.DraftID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByDraftID(_ context.Context, draftID uuid.UUID) (*model.Sale, error) {
	s, ok := r.draftIdx[draftID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByBillNumber(_ context.Context, billNumber string) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.BillNumber == billNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, paymentStatus string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PaymentStatus = paymentStatus
	return nil
}

func (r *stubSaleRepo) SetPDFPath(_ context.Context, id uuid.UUID, path string) error {
	s, ok := r.sales[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.PDFPath = &path
	return nil
}

func (r *stubSaleRepo) NextBillSeq(_ context.Context, _ *gorm.DB) (int64, error) {
	r.seq++
	return r.seq, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	out := make([]model.Sale, 0, len(r.sales))
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListMissingPDF(_ context.Context, _ time.Time, _ int) ([]model.Sale, error) {
	var out []model.Sale
	for _, s := range r.sales {
		if s.PDFPath == nil && s.Status == "completed" {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// stubMovementRepo captures ledger writes for assertion.
type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) Create(_ context.Context, m *model.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uuid.UUID, _ int) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.SaleID != nil && *m.SaleID == saleID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func stubProduct(name, price string, stock int) *model.Product {
	return &model.Product{
		ID:         uuid.New(),
		Name:       name,
		Batch:      "B001",
		ExpiryDate: time.Now().AddDate(1, 0, 0),
		MRP:        dec(price),
		Price:      dec(price),
		Stock:      stock,
		CgstRate:   dec("6"),
		SgstRate:   dec("6"),
		Active:     true,
	}
}

type saleFixture struct {
	svc       SaleService
	saleRepo  *stubSaleRepo
	prodRepo  *stubProductRepo
	movements *stubMovementRepo
	drafts    repository.DraftStore
}

func newSaleFixture(products ...*model.Product) *saleFixture {
	f := &saleFixture{
		saleRepo:  newStubSaleRepo(),
		prodRepo:  newStubProductRepo(products...),
		movements: &stubMovementRepo{},
		drafts:    repository.NewMemoryDraftStore(),
	}
	f.svc = NewSaleService(f.saleRepo, f.prodRepo, f.movements, f.drafts, nil, "DB", dec("12"))
	return f
}

// storedDraft builds a billable draft for the product and puts it in the store.
func (f *saleFixture) storedDraft(t *testing.T, p *model.Product, qty int) *billing.Draft {
	t.Helper()
	d := billing.NewDraft()
	d.CustomerName = "Ravi Kumar"
	d.CustomerPhone = "9876543210"
	d.PaymentMethod = "cash"
	require.NoError(t, d.AddItem(p, qty))
	require.NoError(t, f.drafts.Put(context.Background(), d))
	return d
}

// ── Finalize ──────────────────────────────────────────────────────────────────

func TestFinalize_HappyPath(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Dolo 650", "100.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 3)
	require.NoError(t, d.SetDiscountPercent(dec("10")))
	require.NoError(t, f.drafts.Put(ctx, d))

	resp, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)

	// 3 × 100 − 10% = 270, +12% GST = 302.40
	assert.Equal(t, "DB001", resp.BillNumber)
	assert.True(t, resp.Subtotal.Equal(dec("300")), "subtotal: %s", resp.Subtotal)
	assert.True(t, resp.Total.Equal(dec("302.4")), "total: %s", resp.Total)
	assert.Equal(t, "completed", resp.Status)

	// Stock deducted and the movement ledger written
	assert.Equal(t, 7, p.Stock)
	require.Len(t, f.movements.movements, 1)
	mov := f.movements.movements[0]
	assert.Equal(t, "sale", mov.Type)
	assert.Equal(t, -3, mov.Quantity)
	assert.Equal(t, 10, mov.StockFrom)
	assert.Equal(t, 7, mov.StockTo)

	// The draft is consumed
	_, err = f.drafts.Get(ctx, d.ID)
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestFinalize_EmptyDraftRejected(t *testing.T) {
	ctx := context.Background()
	f := newSaleFixture()

	d := billing.NewDraft()
	require.NoError(t, f.drafts.Put(ctx, d))

	_, err := f.svc.Finalize(ctx, d.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrDraftInvalid)

	// No bill number consumed, nothing persisted
	assert.Equal(t, int64(0), f.saleRepo.seq)
	assert.Empty(t, f.saleRepo.sales)
	assert.Empty(t, f.movements.movements)
}

func TestFinalize_UnknownDraft(t *testing.T) {
	f := newSaleFixture()

	_, err := f.svc.Finalize(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrDraftNotFound)
}

func TestFinalize_RetryReturnsSameSale(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Pan 40", "145.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 2)

	first, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)

	// Retrying the same draft (e.g. a client resend after a timeout) must
	// not create a second sale or deduct stock again.
	second, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.BillNumber, second.BillNumber)
	assert.Len(t, f.saleRepo.sales, 1)
	assert.Equal(t, 8, p.Stock, "stock deducted exactly once")
}

func TestFinalize_StockConflict(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Azithral", "119.50", 2)
	f := newSaleFixture(p)

	// The draft was built while stock was sufficient; a concurrent sale has
	// since consumed it. The guarded deduction must fail the finalize.
	d := billing.NewDraft()
	d.CustomerName = "Ravi Kumar"
	d.PaymentMethod = "cash"
	d.Items = append(d.Items, billing.LineItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    5,
		UnitPrice:   p.Price,
		LineTotal:   p.Price.Mul(dec("5")),
		CgstRate:    dec("6"),
		SgstRate:    dec("6"),
	})
	require.NoError(t, f.drafts.Put(ctx, d))

	_, err := f.svc.Finalize(ctx, d.ID)
	assert.ErrorIs(t, err, billing.ErrConcurrencyConflict)
	assert.Equal(t, 2, p.Stock, "failed deduction leaves stock untouched")
}

func TestFinalize_BillNumbersStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Cetrizine", "22.00", 100)
	f := newSaleFixture(p)

	var numbers []string
	for i := 0; i < 3; i++ {
		d := f.storedDraft(t, p, 1)
		resp, err := f.svc.Finalize(ctx, d.ID)
		require.NoError(t, err)
		numbers = append(numbers, resp.BillNumber)
	}

	assert.Equal(t, []string{"DB001", "DB002", "DB003"}, numbers)
}

func TestFinalize_DuplicateDraftInsertCollapses(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Dolo 650", "33.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 1)

	// Simulate the losing side of a concurrent finalize: the winner's sale
	// is already committed under this draft_id.
	winner := &model.Sale{DraftID: d.ID, BillNumber: "DB001", CustomerName: "Ravi Kumar",
		PaymentMethod: "cash", Status: "completed"}
	require.NoError(t, f.saleRepo.Create(ctx, nil, winner))

	resp, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "DB001", resp.BillNumber)
	assert.Len(t, f.saleRepo.sales, 1, "exactly one sale per draft")
}

// ── VoidSale ──────────────────────────────────────────────────────────────────

func TestVoidSale_RestoresStock(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Benadryl", "132.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 4)
	resp, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, 6, p.Stock)

	saleID, err := uuid.Parse(resp.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.VoidSale(ctx, saleID, "billing mistake"))

	assert.Equal(t, 10, p.Stock, "void restores the deducted quantity")
	assert.Equal(t, "voided", f.saleRepo.sales[saleID].Status)

	// Ledger holds the deduction and its reversal
	movs, err := f.movements.ListBySale(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, "sale", movs[0].Type)
	assert.Equal(t, "void_restore", movs[1].Type)
	assert.Equal(t, 4, movs[1].Quantity)
}

func TestVoidSale_AlreadyVoided(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Benadryl", "132.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 1)
	resp, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	saleID, _ := uuid.Parse(resp.ID)

	require.NoError(t, f.svc.VoidSale(ctx, saleID, "mistake"))
	err = f.svc.VoidSale(ctx, saleID, "again")
	assert.Error(t, err, "voiding twice must not restore stock twice")
	assert.Equal(t, 10, p.Stock)
}

func TestMarkPaid(t *testing.T) {
	ctx := context.Background()
	p := stubProduct("Pan 40", "145.00", 10)
	f := newSaleFixture(p)

	d := f.storedDraft(t, p, 1)
	d.PaymentMethod = "credit"
	d.PaymentStatus = "pending"
	require.NoError(t, f.drafts.Put(ctx, d))

	resp, err := f.svc.Finalize(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.PaymentStatus)

	saleID, _ := uuid.Parse(resp.ID)
	require.NoError(t, f.svc.MarkPaid(ctx, saleID))
	assert.Equal(t, "paid", f.saleRepo.sales[saleID].PaymentStatus)
}
