package receipt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// CanonicalText builds the string the integrity hash is computed over:
// "{numero}-{prestadorCpfCnpj}-{valor}". The tax id is used as stored and the
// amount in its shortest decimal form (1500, 1500.5), which is how hashes
// issued before this service were produced.
func CanonicalText(number, payeeTaxID string, amount decimal.Decimal) string {
	return number + "-" + payeeTaxID + "-" + amount.String()
}

// IsWellFormedHash reports whether s is a lowercase hex SHA-256 digest
func IsWellFormedHash(s string) bool {
	return hashPattern.MatchString(s)
}

// Hasher computes the integrity digest of a canonical text
type Hasher interface {
	Hash(ctx context.Context, canonical string) (string, error)
}

// DigestFunc is the underlying digest primitive
type DigestFunc func(data []byte) ([]byte, error)

func sha256Digest(data []byte) ([]byte, error) {
	sum := sha256.Sum256(data)
	return sum[:], nil
}

// SHA256Hasher runs the digest off the caller's goroutine and waits for it
// under the context deadline and an optional per-call timeout.
type SHA256Hasher struct {
	timeout time.Duration
	digest  DigestFunc
}

// HasherOption configures a SHA256Hasher
type HasherOption func(*SHA256Hasher)

// WithHashTimeout bounds every Hash call. Zero means only the context applies.
func WithHashTimeout(d time.Duration) HasherOption {
	return func(h *SHA256Hasher) {
		h.timeout = d
	}
}

// WithDigest replaces the digest primitive
func WithDigest(fn DigestFunc) HasherOption {
	return func(h *SHA256Hasher) {
		h.digest = fn
	}
}

// NewSHA256Hasher creates a hasher using crypto/sha256
func NewSHA256Hasher(opts ...HasherOption) *SHA256Hasher {
	h := &SHA256Hasher{digest: sha256Digest}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type digestResult struct {
	sum []byte
	err error
}

// Hash returns the lowercase hex digest of canonical. It never returns a
// placeholder: any failure is reported as HASH_COMPUTATION_FAILURE and an
// expired deadline as HASH_COMPUTATION_TIMEOUT.
func (h *SHA256Hasher) Hash(ctx context.Context, canonical string) (string, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	done := make(chan digestResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- digestResult{err: fmt.Errorf("digest panicked: %v", r)}
			}
		}()
		sum, err := h.digest([]byte(canonical))
		done <- digestResult{sum: sum, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrHashComputationTimeout
		}
		return "", ErrHashComputationFailure.WithDetails(ctx.Err().Error())
	case res := <-done:
		if res.err != nil {
			return "", ErrHashComputationFailure.WithDetails(res.err.Error())
		}
		if len(res.sum) != sha256.Size {
			return "", ErrHashComputationFailure.WithDetails(
				fmt.Sprintf("digest has %d bytes, want %d", len(res.sum), sha256.Size))
		}
		return hex.EncodeToString(res.sum), nil
	}
}
