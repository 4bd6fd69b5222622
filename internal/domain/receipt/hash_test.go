package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalText(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"1500.00", "RECIBO-2024-00042-98765432100-1500"},
		{"1500.50", "RECIBO-2024-00042-98765432100-1500.5"},
		{"0.1", "RECIBO-2024-00042-98765432100-0.1"},
		{"0", "RECIBO-2024-00042-98765432100-0"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := CanonicalText("RECIBO-2024-00042", "98765432100", decimal.RequireFromString(tt.amount))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSHA256Hasher(t *testing.T) {
	ctx := context.Background()

	t.Run("known digest", func(t *testing.T) {
		h := NewSHA256Hasher()
		got, err := h.Hash(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
		assert.True(t, IsWellFormedHash(got))
	})

	t.Run("deterministic", func(t *testing.T) {
		h := NewSHA256Hasher()
		text := CanonicalText("RECIBO-2024-00042", "98765432100", decimal.NewFromInt(1500))
		a, err := h.Hash(ctx, text)
		require.NoError(t, err)
		b, err := h.Hash(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("digest failure propagates", func(t *testing.T) {
		h := NewSHA256Hasher(WithDigest(func([]byte) ([]byte, error) {
			return nil, errors.New("primitive unavailable")
		}))
		got, err := h.Hash(ctx, "abc")
		assert.Empty(t, got)
		assert.ErrorIs(t, err, ErrHashComputationFailure)
		assert.Contains(t, err.Error(), "primitive unavailable")
	})

	t.Run("digest panic is a failure", func(t *testing.T) {
		h := NewSHA256Hasher(WithDigest(func([]byte) ([]byte, error) {
			panic("boom")
		}))
		_, err := h.Hash(ctx, "abc")
		assert.ErrorIs(t, err, ErrHashComputationFailure)
	})

	t.Run("short digest is a failure", func(t *testing.T) {
		h := NewSHA256Hasher(WithDigest(func([]byte) ([]byte, error) {
			return []byte{1, 2, 3}, nil
		}))
		_, err := h.Hash(ctx, "abc")
		assert.ErrorIs(t, err, ErrHashComputationFailure)
	})

	t.Run("slow digest times out", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		h := NewSHA256Hasher(
			WithHashTimeout(10*time.Millisecond),
			WithDigest(func(data []byte) ([]byte, error) {
				<-release
				return sha256Digest(data)
			}),
		)
		_, err := h.Hash(ctx, "abc")
		assert.ErrorIs(t, err, ErrHashComputationTimeout)
	})

	t.Run("cancelled context is a failure", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		h := NewSHA256Hasher(WithDigest(func(data []byte) ([]byte, error) {
			<-release
			return sha256Digest(data)
		}))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := h.Hash(cctx, "abc")
		assert.ErrorIs(t, err, ErrHashComputationFailure)
	})
}
