package receipt

import (
	"time"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func validParams() Params {
	return Params{
		PayerName:   "Ana Souza",
		PayerTaxID:  "12345678900",
		PayeeName:   "João Pereira",
		PayeeTaxID:  "98765432100",
		Amount:      decimal.RequireFromString("1500.00"),
		Description: "Projeto arquitetônico residencial",
	}
}

func validSignature() SignatureParams {
	return SignatureParams{
		SignerName:  "João Pereira",
		SignerTaxID: "98765432100",
		Artifact:    "data:image/png;base64,iVBORw0KGgo=",
	}
}

func newDraft(t interface{ Helper(); Fatalf(string, ...any) }) *Receipt {
	t.Helper()
	r, err := New(validParams(), "RECIBO-2024-00042", fixedNow)
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	return r
}
