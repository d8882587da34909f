package billing

import "fmt"

// FormatBillNumber renders a sequence value as a printed bill number:
// a fixed store prefix plus a zero-padded counter ("DB001", "DB002", ...).
// The width grows past 999 rather than wrapping.
func FormatBillNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%03d", prefix, seq)
}
