package receipt

import (
	"context"
	"time"

	"github.com/obra/backend/internal/domain/shared"
)

// Signer attaches provider signatures and verifies them later
type Signer struct {
	hasher Hasher
	now    func() time.Time
}

// NewSigner creates a Signer. A nil clock means time.Now.
func NewSigner(hasher Hasher, now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{hasher: hasher, now: now}
}

// AttachProviderSignature returns a signed copy of r. The hash covers the
// original receipt's number, payee tax id and amount. On any failure nothing
// is returned and r is untouched.
func (s *Signer) AttachProviderSignature(ctx context.Context, r *Receipt, params SignatureParams) (*Receipt, error) {
	switch r.Status {
	case StatusDraft:
	case StatusSigned:
		return nil, ErrAlreadySigned
	default:
		return nil, shared.ErrInvalidState.WithDetails("cannot sign receipt in status " + r.Status.String())
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, r.CanonicalText())
	if err != nil {
		return nil, err
	}

	now := s.now()
	sigType := params.Type
	if sigType == "" {
		sigType = DefaultSignatureType
	}

	signed := r.Clone()
	signed.Status = StatusSigned
	signed.UpdatedAt = now
	signed.Signature = &Signature{
		SignerName:   params.SignerName,
		SignerTaxID:  params.SignerTaxID,
		Artifact:     params.Artifact,
		Type:         sigType,
		SignedAt:     now,
		DocumentHash: hash,
	}
	signed.IncrementVersion()
	signed.AddDomainEvent(NewReceiptSignedEvent(signed))
	return signed, nil
}

// Verify recomputes the integrity hash and compares it with the embedded one.
// It returns false when number, payee tax id or amount changed after signing.
func (s *Signer) Verify(ctx context.Context, r *Receipt) (bool, error) {
	if r.Signature == nil {
		return false, shared.ErrInvalidState.WithDetails("receipt is not signed")
	}
	hash, err := s.hasher.Hash(ctx, r.CanonicalText())
	if err != nil {
		return false, err
	}
	return hash == r.Signature.DocumentHash, nil
}
