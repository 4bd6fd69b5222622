package models

import (
	"time"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ReceiptModel is the persistence model of the Receipt aggregate.
// Signature and project columns are NULL until present.
type ReceiptModel struct {
	AggregateModel
	Number        string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	PayerName     string          `gorm:"type:varchar(200);not null"`
	PayerTaxID    string          `gorm:"column:payer_tax_id;type:varchar(20);not null"`
	PayeeName     string          `gorm:"type:varchar(200);not null"`
	PayeeTaxID    string          `gorm:"column:payee_tax_id;type:varchar(20);not null"`
	PayeeEmail    string          `gorm:"type:varchar(200)"`
	PayeePhone    string          `gorm:"type:varchar(30)"`
	PayeeAddress  string          `gorm:"type:varchar(300)"`
	ProjectID     *string         `gorm:"type:varchar(64);index"`
	ProjectName   *string         `gorm:"type:varchar(200)"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Currency      string          `gorm:"type:char(3);not null;default:'BRL'"`
	PaymentMethod string          `gorm:"type:varchar(50)"`
	Description   string          `gorm:"type:text;not null"`
	ServiceStart  *time.Time
	ServiceEnd    *time.Time
	Notes         string `gorm:"type:text"`
	Status        string `gorm:"type:varchar(20);not null;index"`
	IssuedAt      time.Time `gorm:"not null"`

	SignerName        *string `gorm:"type:varchar(200)"`
	SignerTaxID       *string `gorm:"column:signer_tax_id;type:varchar(20)"`
	SignatureArtifact *string `gorm:"type:text"`
	SignatureType     *string `gorm:"type:varchar(20)"`
	SignedAt          *time.Time
	DocumentHash      *string `gorm:"type:char(64)"`

	CancelledAt        *time.Time
	CancellationReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for ReceiptModel
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts ReceiptModel to a domain Receipt
func (m *ReceiptModel) ToDomain() *receipt.Receipt {
	r := &receipt.Receipt{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregateRoot(),
		Number:            m.Number,
		Payer: receipt.Party{
			Name:  m.PayerName,
			TaxID: m.PayerTaxID,
		},
		Payee: receipt.Payee{
			Name:    m.PayeeName,
			TaxID:   m.PayeeTaxID,
			Email:   m.PayeeEmail,
			Phone:   m.PayeePhone,
			Address: m.PayeeAddress,
		},
		Amount:             m.Amount,
		Currency:           valueobject.Currency(m.Currency).OrDefault(),
		PaymentMethod:      m.PaymentMethod,
		Description:        m.Description,
		ServiceStart:       m.ServiceStart,
		ServiceEnd:         m.ServiceEnd,
		Notes:              m.Notes,
		Status:             receipt.Status(m.Status),
		IssuedAt:           m.IssuedAt,
		CancelledAt:        m.CancelledAt,
		CancellationReason: m.CancellationReason,
	}

	if m.ProjectID != nil || m.ProjectName != nil {
		r.Project = &receipt.Project{ID: deref(m.ProjectID), Name: deref(m.ProjectName)}
	}

	if m.DocumentHash != nil && m.SignedAt != nil {
		r.Signature = &receipt.Signature{
			SignerName:   deref(m.SignerName),
			SignerTaxID:  deref(m.SignerTaxID),
			Artifact:     deref(m.SignatureArtifact),
			Type:         receipt.SignatureType(deref(m.SignatureType)),
			SignedAt:     *m.SignedAt,
			DocumentHash: *m.DocumentHash,
		}
	}
	return r
}

// ReceiptModelFromDomain creates a ReceiptModel from a domain Receipt
func ReceiptModelFromDomain(r *receipt.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		Number:             r.Number,
		PayerName:          r.Payer.Name,
		PayerTaxID:         r.Payer.TaxID,
		PayeeName:          r.Payee.Name,
		PayeeTaxID:         r.Payee.TaxID,
		PayeeEmail:         r.Payee.Email,
		PayeePhone:         r.Payee.Phone,
		PayeeAddress:       r.Payee.Address,
		Amount:             r.Amount,
		Currency:           r.Currency.OrDefault().String(),
		PaymentMethod:      r.PaymentMethod,
		Description:        r.Description,
		ServiceStart:       r.ServiceStart,
		ServiceEnd:         r.ServiceEnd,
		Notes:              r.Notes,
		Status:             string(r.Status),
		IssuedAt:           r.IssuedAt,
		CancelledAt:        r.CancelledAt,
		CancellationReason: r.CancellationReason,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)

	if r.Project != nil {
		m.ProjectID = nonEmpty(r.Project.ID)
		m.ProjectName = nonEmpty(r.Project.Name)
	}
	if s := r.Signature; s != nil {
		signedAt := s.SignedAt
		m.SignerName = &s.SignerName
		m.SignerTaxID = nonEmpty(s.SignerTaxID)
		m.SignatureArtifact = &s.Artifact
		sigType := string(s.Type)
		m.SignatureType = &sigType
		m.SignedAt = &signedAt
		m.DocumentHash = &s.DocumentHash
	}
	return m
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
