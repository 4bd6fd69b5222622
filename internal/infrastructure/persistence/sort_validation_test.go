package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"INVALID", "DESC"},
		{"ASC; DROP TABLE receipts;--", "DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "created_at"},
		{"valid field returns field", "issued_at", "issued_at"},
		{"whitespace around valid field", "  amount  ", "amount"},
		{"case sensitive", "NUMBER", "created_at"},
		{"unknown column", "signature_artifact", "created_at"},
		{"injection attempt", "number; DROP TABLE receipts;--", "created_at"},
		{"subquery", "id, (SELECT payer_tax_id FROM receipts)", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ReceiptSortFields, "created_at"))
		})
	}
}
