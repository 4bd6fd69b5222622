package printing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var renderNow = time.Date(2024, time.March, 15, 14, 0, 0, 0, time.UTC)

func fixtureReceipt(t *testing.T, mutate func(*receipt.Params)) *receipt.Receipt {
	t.Helper()
	params := receipt.Params{
		PayerName:   "Ana Souza",
		PayerTaxID:  "12345678900",
		PayeeName:   "Carlos Lima",
		PayeeTaxID:  "12345678000190",
		Amount:      decimal.RequireFromString("1500.00"),
		Description: "Projeto de reforma da cozinha",
	}
	if mutate != nil {
		mutate(&params)
	}
	r, err := receipt.New(params, "RECIBO-2024-00042", renderNow)
	require.NoError(t, err)
	return r
}

func signFixture(t *testing.T, r *receipt.Receipt, params receipt.SignatureParams) *receipt.Receipt {
	t.Helper()
	signer := receipt.NewSigner(receipt.NewSHA256Hasher(), func() time.Time { return renderNow })
	signed, err := signer.AttachProviderSignature(context.Background(), r, params)
	require.NoError(t, err)
	return signed
}

func TestReceiptRenderer_Draft(t *testing.T) {
	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)

	doc, err := renderer.Render(context.Background(), fixtureReceipt(t, nil))
	require.NoError(t, err)

	assert.Contains(t, doc, "RECIBO-2024-00042")
	assert.Contains(t, doc, "1.500,00")
	assert.Contains(t, doc, "R$")
	assert.Contains(t, doc, "ANA SOUZA")
	assert.Contains(t, doc, "123.456.789-00")
	assert.Contains(t, doc, "CARLOS LIMA")
	assert.Contains(t, doc, "12.345.678/0001-90")
	assert.Contains(t, doc, "Projeto de reforma da cozinha")
	assert.Contains(t, doc, "15 de março de 2024")

	assert.NotContains(t, doc, "Autenticidade")
	assert.NotContains(t, doc, "do projeto")
	assert.NotContains(t, doc, "Forma de pagamento")
	assert.NotContains(t, doc, "Período do serviço")
	assert.NotContains(t, doc, "Observações")
	assert.NotContains(t, doc, "CANCELADO")
}

func TestReceiptRenderer_OptionalFields(t *testing.T) {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
	r := fixtureReceipt(t, func(p *receipt.Params) {
		p.ProjectName = "Casa Jardim Europa"
		p.PaymentMethod = "PIX"
		p.ServiceStart = &start
		p.ServiceEnd = &end
		p.Notes = "Pagamento em parcela única"
		p.PayeeAddress = "Rua das Flores, 100 - São Paulo/SP"
		p.PayeeEmail = "carlos@example.com"
		p.PayeePhone = "(11) 99999-0000"
	})

	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)
	doc, err := renderer.Render(context.Background(), r)
	require.NoError(t, err)

	assert.Contains(t, doc, "do projeto <strong>Casa Jardim Europa</strong>")
	assert.Contains(t, doc, "Forma de pagamento: PIX")
	assert.Contains(t, doc, "Período do serviço: 01/02/2024 a 28/02/2024")
	assert.Contains(t, doc, "Observações: Pagamento em parcela única")
	assert.Contains(t, doc, "Rua das Flores, 100 - São Paulo/SP")
	assert.Contains(t, doc, "carlos@example.com")
	assert.Contains(t, doc, "(11) 99999-0000")
}

func TestReceiptRenderer_ServicePeriod(t *testing.T) {
	start := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		want  string
	}{
		{"start and end", &start, &end, "Período do serviço: 01/02/2024 a 28/02/2024</p>"},
		{"start only", &start, nil, "Período do serviço: 01/02/2024</p>"},
		{"end only", nil, &end, "Período do serviço: até 28/02/2024</p>"},
	}

	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fixtureReceipt(t, func(p *receipt.Params) {
				p.ServiceStart = tt.start
				p.ServiceEnd = tt.end
			})

			doc, err := renderer.Render(context.Background(), r)
			require.NoError(t, err)
			assert.Contains(t, doc, tt.want)
			assert.Equal(t, 1, strings.Count(doc, "Período do serviço"))
		})
	}
}

func TestReceiptRenderer_Signed(t *testing.T) {
	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)

	t.Run("drawn signature embeds image and hash", func(t *testing.T) {
		signed := signFixture(t, fixtureReceipt(t, nil), receipt.SignatureParams{
			SignerName:  "Carlos Lima",
			SignerTaxID: "12345678000190",
			Artifact:    "data:image/png;base64,iVBORw0KGgo=",
		})

		doc, err := renderer.Render(context.Background(), signed)
		require.NoError(t, err)
		assert.Contains(t, doc, `src="data:image/png;base64,iVBORw0KGgo="`)
		assert.Contains(t, doc, "Autenticidade: "+signed.Signature.DocumentHash)
		assert.Contains(t, doc, "15/03/2024 14:00")
	})

	t.Run("typed signature renders text", func(t *testing.T) {
		signed := signFixture(t, fixtureReceipt(t, nil), receipt.SignatureParams{
			SignerName:  "Carlos Lima",
			SignerTaxID: "12345678000190",
			Artifact:    "Carlos Lima",
			Type:        receipt.SignatureTypeTyped,
		})

		doc, err := renderer.Render(context.Background(), signed)
		require.NoError(t, err)
		assert.Contains(t, doc, `<p class="assinatura-digitada">Carlos Lima</p>`)
		assert.NotContains(t, doc, "<img")
	})

	t.Run("unsafe artifact is dropped", func(t *testing.T) {
		signed := signFixture(t, fixtureReceipt(t, nil), receipt.SignatureParams{
			SignerName:  "Carlos Lima",
			SignerTaxID: "12345678000190",
			Artifact:    "javascript:alert(1)",
			Type:        receipt.SignatureTypeUploaded,
		})

		doc, err := renderer.Render(context.Background(), signed)
		require.NoError(t, err)
		assert.NotContains(t, doc, "javascript:")
	})
}

func TestReceiptRenderer_Cancelled(t *testing.T) {
	cancelled, err := receipt.CancelReceipt(fixtureReceipt(t, nil), "duplicado", renderNow)
	require.NoError(t, err)

	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)
	doc, err := renderer.Render(context.Background(), cancelled)
	require.NoError(t, err)
	assert.Contains(t, doc, "CANCELADO")
}

func TestReceiptRenderer_EscapesUserInput(t *testing.T) {
	r := fixtureReceipt(t, func(p *receipt.Params) {
		p.Description = `<script>alert("x")</script>`
	})
	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)

	doc, err := renderer.Render(context.Background(), r)
	require.NoError(t, err)
	assert.False(t, strings.Contains(doc, "<script>"))
}

func TestReceiptRenderer_CustomTemplate(t *testing.T) {
	renderer, err := NewReceiptRenderer(WithReceiptTemplate(`{{.Number}} {{formatMoney .Amount .Currency}}`))
	require.NoError(t, err)

	doc, err := renderer.Render(context.Background(), fixtureReceipt(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "RECIBO-2024-00042 R$\u00a01.500,00", doc)

	_, err = NewReceiptRenderer(WithReceiptTemplate("{{.Number"))
	assert.Error(t, err)

	_, err = renderer.Render(context.Background(), nil)
	assert.Error(t, err)
}

func TestReceiptRenderer_EndToEnd(t *testing.T) {
	r := fixtureReceipt(t, func(p *receipt.Params) {
		p.Amount = decimal.NewFromInt(500)
		p.Description = "Instalação elétrica"
	})
	signed := signFixture(t, r, receipt.SignatureParams{
		SignerName:  "Carlos Lima",
		SignerTaxID: "12345678000190",
		Artifact:    "data:image/png;base64,AAAA",
	})

	assert.Equal(t, receipt.StatusSigned, signed.Status)
	assert.True(t, receipt.IsWellFormedHash(signed.Signature.DocumentHash))

	renderer, err := NewReceiptRenderer()
	require.NoError(t, err)
	doc, err := renderer.Render(context.Background(), signed)
	require.NoError(t, err)
	assert.Contains(t, doc, "Instalação elétrica")
	assert.Contains(t, doc, "500,00")
	assert.NotContains(t, doc, "do projeto")
}
