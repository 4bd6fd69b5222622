package receipt

import (
	"time"

	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AggregateType is the aggregate type name used in domain events
const AggregateType = "Receipt"

// Party is the payer (cliente) of a receipt
type Party struct {
	Name  string
	TaxID string
}

// Payee is the service provider (prestador) who receives the payment and signs
type Payee struct {
	Name    string
	TaxID   string
	Email   string
	Phone   string
	Address string
}

// Project is the optional project a receipt refers to
type Project struct {
	ID   string
	Name string
}

// Signature is the provider signature attached when a receipt is signed
type Signature struct {
	SignerName   string
	SignerTaxID  string
	Artifact     string
	Type         SignatureType
	SignedAt     time.Time
	DocumentHash string
}

// Receipt is the aggregate root of a payment receipt (recibo)
type Receipt struct {
	shared.BaseAggregateRoot
	Number             string
	Payer              Party
	Payee              Payee
	Project            *Project
	Amount             decimal.Decimal
	Currency           valueobject.Currency
	PaymentMethod      string
	Description        string
	ServiceStart       *time.Time
	ServiceEnd         *time.Time
	Notes              string
	Status             Status
	IssuedAt           time.Time
	Signature          *Signature
	CancelledAt        *time.Time
	CancellationReason string
}

// New builds a draft receipt from validated params. numero is assigned here
// and never changes afterwards; IssuedAt, CreatedAt and UpdatedAt all equal now.
func New(params Params, number string, now time.Time) (*Receipt, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r := &Receipt{
		BaseAggregateRoot: shared.NewBaseAggregateRootAt(now),
		Number:            number,
		Payer: Party{
			Name:  params.PayerName,
			TaxID: params.PayerTaxID,
		},
		Payee: Payee{
			Name:    params.PayeeName,
			TaxID:   params.PayeeTaxID,
			Email:   params.PayeeEmail,
			Phone:   params.PayeePhone,
			Address: params.PayeeAddress,
		},
		Amount:        params.Amount,
		Currency:      params.Currency.OrDefault(),
		PaymentMethod: params.PaymentMethod,
		Description:   params.Description,
		ServiceStart:  copyTime(params.ServiceStart),
		ServiceEnd:    copyTime(params.ServiceEnd),
		Notes:         params.Notes,
		Status:        StatusDraft,
		IssuedAt:      now,
	}
	if params.ProjectID != "" || params.ProjectName != "" {
		r.Project = &Project{ID: params.ProjectID, Name: params.ProjectName}
	}

	r.AddDomainEvent(NewReceiptIssuedEvent(r))
	return r, nil
}

// Money returns the amount as a Money value object
func (r *Receipt) Money() valueobject.Money {
	m, err := valueobject.NewMoney(r.Amount, r.Currency.OrDefault())
	if err != nil {
		return valueobject.NewMoneyBRL(r.Amount)
	}
	return m
}

// IsSigned returns true when a provider signature is attached
func (r *Receipt) IsSigned() bool {
	return r.Signature != nil
}

// IsCancelled returns true when the receipt was voided
func (r *Receipt) IsCancelled() bool {
	return r.Status == StatusCancelled
}

// CanonicalText returns the text the integrity hash is computed over
func (r *Receipt) CanonicalText() string {
	return CanonicalText(r.Number, r.Payee.TaxID, r.Amount)
}

// Warnings lists inconsistencies that are tolerated but worth surfacing
func (r *Receipt) Warnings() []string {
	var warnings []string
	if r.ServiceStart != nil && r.ServiceEnd != nil && r.ServiceEnd.Before(*r.ServiceStart) {
		warnings = append(warnings, "service end date is before service start date")
	}
	return warnings
}

// Clone returns a deep copy without pending domain events
func (r *Receipt) Clone() *Receipt {
	c := *r
	c.BaseAggregateRoot = r.BaseAggregateRoot.CloneWithoutEvents()
	c.ServiceStart = copyTime(r.ServiceStart)
	c.ServiceEnd = copyTime(r.ServiceEnd)
	c.CancelledAt = copyTime(r.CancelledAt)
	if r.Project != nil {
		p := *r.Project
		c.Project = &p
	}
	if r.Signature != nil {
		s := *r.Signature
		c.Signature = &s
	}
	return &c
}

// CancelReceipt voids a draft or signed receipt and returns the cancelled copy.
// The signature, when present, is kept so the document stays verifiable.
func CancelReceipt(r *Receipt, reason string, now time.Time) (*Receipt, error) {
	if r.Status == StatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return nil, shared.ErrInvalidState.WithDetails("cannot cancel receipt in status " + r.Status.String())
	}

	c := r.Clone()
	c.Status = StatusCancelled
	c.CancelledAt = &now
	c.CancellationReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()
	c.AddDomainEvent(NewReceiptCancelledEvent(c, r.Status))
	return c, nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
