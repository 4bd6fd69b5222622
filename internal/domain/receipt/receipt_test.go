package receipt

import (
	"errors"
	"testing"
	"time"

	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates draft with defaults", func(t *testing.T) {
		r, err := New(validParams(), "RECIBO-2024-00042", fixedNow)
		require.NoError(t, err)

		assert.NotEqual(t, "", r.ID.String())
		assert.Equal(t, "RECIBO-2024-00042", r.Number)
		assert.Equal(t, StatusDraft, r.Status)
		assert.Equal(t, valueobject.BRL, r.Currency)
		assert.Equal(t, fixedNow, r.IssuedAt)
		assert.Equal(t, r.IssuedAt, r.CreatedAt)
		assert.Equal(t, r.CreatedAt, r.UpdatedAt)
		assert.Equal(t, 1, r.GetVersion())
		assert.Nil(t, r.Signature)
		assert.Nil(t, r.Project)

		events := r.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeReceiptIssued, events[0].EventType())
		assert.Equal(t, r.ID, events[0].AggregateID())
	})

	t.Run("keeps explicit currency and project", func(t *testing.T) {
		p := validParams()
		p.Currency = valueobject.USD
		p.ProjectID = "proj-1"
		p.ProjectName = "Casa Jardim"

		r, err := New(p, "RECIBO-2024-00001", fixedNow)
		require.NoError(t, err)
		assert.Equal(t, valueobject.USD, r.Currency)
		require.NotNil(t, r.Project)
		assert.Equal(t, "Casa Jardim", r.Project.Name)
	})

	t.Run("accepts zero amount", func(t *testing.T) {
		p := validParams()
		p.Amount = decimal.Zero
		_, err := New(p, "RECIBO-2024-00001", fixedNow)
		assert.NoError(t, err)
	})

	t.Run("copies service dates", func(t *testing.T) {
		start := fixedNow.AddDate(0, -1, 0)
		p := validParams()
		p.ServiceStart = &start

		r, err := New(p, "RECIBO-2024-00001", fixedNow)
		require.NoError(t, err)
		*p.ServiceStart = fixedNow
		assert.Equal(t, fixedNow.AddDate(0, -1, 0), *r.ServiceStart)
	})
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		detail string
	}{
		{"blank payer name", func(p *Params) { p.PayerName = "   " }, "clienteNome: is required"},
		{"missing payer tax id", func(p *Params) { p.PayerTaxID = "" }, "clienteCpfCnpj: is required"},
		{"malformed payer tax id", func(p *Params) { p.PayerTaxID = "123" }, "clienteCpfCnpj: must be a CPF (11 digits) or CNPJ (14 digits)"},
		{"blank payee name", func(p *Params) { p.PayeeName = "" }, "prestadorNome: is required"},
		{"missing payee tax id", func(p *Params) { p.PayeeTaxID = "" }, "prestadorCpfCnpj: is required"},
		{"blank description", func(p *Params) { p.Description = "\t" }, "descricaoServico: is required"},
		{"negative amount", func(p *Params) { p.Amount = decimal.NewFromInt(-1) }, "valor: must be greater than or equal to 0"},
		{"sub-cent amount", func(p *Params) { p.Amount = decimal.RequireFromString("10.005") }, "valor: must have at most 2 decimal places"},
		{"bad currency", func(p *Params) { p.Currency = "XYZW" }, "moeda: must be an ISO 4217 currency code"},
		{"bad email", func(p *Params) { p.PayeeEmail = "not-an-email" }, "prestadorEmail: must be a valid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)

			r, err := New(p, "RECIBO-2024-00001", fixedNow)
			assert.Nil(t, r)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidReceiptParams))

			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Contains(t, de.Details, tt.detail)
		})
	}

	t.Run("lists every violation", func(t *testing.T) {
		_, err := New(Params{Amount: decimal.NewFromInt(-5)}, "RECIBO-2024-00001", fixedNow)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Len(t, de.Details, 6)
	})
}

func TestReceipt_Warnings(t *testing.T) {
	start := fixedNow
	end := fixedNow.Add(-48 * time.Hour)
	p := validParams()
	p.ServiceStart = &start
	p.ServiceEnd = &end

	r, err := New(p, "RECIBO-2024-00001", fixedNow)
	require.NoError(t, err, "end before start is tolerated")
	assert.Len(t, r.Warnings(), 1)

	assert.Empty(t, newDraft(t).Warnings())
}

func TestReceipt_Clone(t *testing.T) {
	r := newDraft(t)
	r.Project = &Project{Name: "Casa"}

	c := r.Clone()
	c.Project.Name = "Outro"
	c.Payer.Name = "Outro"

	assert.Equal(t, "Casa", r.Project.Name)
	assert.Equal(t, "Ana Souza", r.Payer.Name)
	assert.Empty(t, c.GetDomainEvents())
	assert.Equal(t, r.ID, c.ID)
}

func TestCancelReceipt(t *testing.T) {
	later := fixedNow.Add(time.Hour)

	t.Run("cancels draft", func(t *testing.T) {
		r := newDraft(t)
		c, err := CancelReceipt(r, "emitido em duplicidade", later)
		require.NoError(t, err)

		assert.Equal(t, StatusCancelled, c.Status)
		require.NotNil(t, c.CancelledAt)
		assert.Equal(t, later, *c.CancelledAt)
		assert.Equal(t, later, c.UpdatedAt)
		assert.Equal(t, fixedNow, c.IssuedAt)
		assert.Equal(t, 2, c.GetVersion())
		assert.Equal(t, StatusDraft, r.Status, "input must not be mutated")

		events := c.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*ReceiptCancelledEvent)
		require.True(t, ok)
		assert.Equal(t, StatusDraft, ev.PreviousStatus)
		assert.Equal(t, "emitido em duplicidade", ev.Reason)
	})

	t.Run("cancels signed and keeps signature", func(t *testing.T) {
		r := newDraft(t)
		r.Status = StatusSigned
		r.Signature = &Signature{DocumentHash: "abc"}

		c, err := CancelReceipt(r, "", later)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, c.Status)
		require.NotNil(t, c.Signature)
		assert.Equal(t, "abc", c.Signature.DocumentHash)
	})

	t.Run("rejects already cancelled", func(t *testing.T) {
		r := newDraft(t)
		c, err := CancelReceipt(r, "", later)
		require.NoError(t, err)

		_, err = CancelReceipt(c, "", later)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDraft.CanTransitionTo(StatusSigned))
	assert.True(t, StatusDraft.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusSigned.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusSigned.CanTransitionTo(StatusDraft))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusSigned))
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, Status("pago").IsValid())
	assert.Equal(t, "Assinado", StatusSigned.DisplayName())

	assert.True(t, SignatureTypeTyped.IsValid())
	assert.False(t, SignatureTypeTyped.IsImage())
	assert.True(t, SignatureTypeUploaded.IsImage())
}
