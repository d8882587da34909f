package billing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors let callers branch on specific business failures with
// errors.Is. The HTTP layer maps each to a status code and a safe message.
var (
	// ErrOutOfStock means the product has zero available stock.
	ErrOutOfStock = errors.New("product is out of stock")

	// ErrInsufficientStock means the requested quantity exceeds available stock.
	// The draft is left unchanged.
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")

	// ErrProductInactive means the product has been removed from sale.
	ErrProductInactive = errors.New("product is inactive")

	// ErrInvalidQuantity rejects non-positive quantities on add.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInvalidDiscount rejects discounts outside 0–100.
	ErrInvalidDiscount = errors.New("discount percent must be between 0 and 100")

	// ErrLineNotFound means the line index does not reference an item.
	ErrLineNotFound = errors.New("line item not found")

	// ErrDraftInvalid means the draft is missing required fields at finalize
	// time. Wrapped by ValidationError, which enumerates the causes.
	ErrDraftInvalid = errors.New("draft is not ready to finalize")

	// ErrConcurrencyConflict means bill-number allocation or stock deduction
	// lost a race with a concurrent finalize. Safe to retry after re-checking
	// stock.
	ErrConcurrencyConflict = errors.New("finalize lost a concurrent update race")
)

// ValidationError wraps ErrDraftInvalid with the concrete reasons the draft
// was rejected, so the register UI can prompt for each missing field.
type ValidationError struct {
	Causes []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDraftInvalid.Error(), strings.Join(e.Causes, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrDraftInvalid
}
