package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when it is whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ReceiptSortFields contains allowed sort columns for receipts
var ReceiptSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"number":     true,
	"issued_at":  true,
	"amount":     true,
	"status":     true,
	"payer_name": true,
	"payee_name": true,
	"signed_at":  true,
}
