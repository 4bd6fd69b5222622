package testutil

import (
	"testing"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ValidReceiptParams returns creation params that pass validation
func ValidReceiptParams() receipt.Params {
	return receipt.Params{
		PayerName:     "Ana Souza",
		PayerTaxID:    "12345678900",
		PayeeName:     "João Pereira",
		PayeeTaxID:    "98765432100",
		PayeeEmail:    "joao@example.com",
		ProjectID:     "obra-17",
		ProjectName:   "Residência Souza",
		Amount:        decimal.RequireFromString("1500.00"),
		PaymentMethod: "PIX",
		Description:   "Projeto arquitetônico residencial",
	}
}

// ValidSignatureParams returns signature params matching ValidReceiptParams' payee
func ValidSignatureParams() receipt.SignatureParams {
	return receipt.SignatureParams{
		SignerName:  "João Pereira",
		SignerTaxID: "98765432100",
		Artifact:    "data:image/png;base64,iVBORw0KGgo=",
		Type:        receipt.SignatureTypeDrawn,
	}
}

// NewDraftReceipt builds a draft with the given number at FixedTime
func NewDraftReceipt(t *testing.T, number string) *receipt.Receipt {
	t.Helper()
	r, err := receipt.New(ValidReceiptParams(), number, FixedTime)
	require.NoError(t, err)
	return r
}
