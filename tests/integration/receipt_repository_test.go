package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/infrastructure/persistence"
	"github.com/obra/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormReceiptRepository(testDB.DB)
	signer := receipt.NewSigner(receipt.NewSHA256Hasher(), testutil.FixedClock)
	ctx := context.Background()

	t.Run("Save and FindByID round trip", func(t *testing.T) {
		draft := testutil.NewDraftReceipt(t, "RECIBO-2024-10001")
		require.NoError(t, repo.Save(ctx, draft))

		found, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, draft.Number, found.Number)
		assert.Equal(t, draft.Payer, found.Payer)
		assert.Equal(t, draft.Payee, found.Payee)
		assert.True(t, draft.Amount.Equal(found.Amount))
		assert.Equal(t, receipt.StatusDraft, found.Status)
		assert.Equal(t, 1, found.Version)
		assert.Nil(t, found.Signature)
		assert.Empty(t, found.GetDomainEvents())
	})

	t.Run("FindByNumber", func(t *testing.T) {
		draft := testutil.NewDraftReceipt(t, "RECIBO-2024-10002")
		require.NoError(t, repo.Save(ctx, draft))

		found, err := repo.FindByNumber(ctx, "RECIBO-2024-10002")
		require.NoError(t, err)
		assert.Equal(t, draft.ID, found.ID)

		exists, err := repo.ExistsByNumber(ctx, "RECIBO-2024-10002")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("missing receipt is NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)

		exists, err := repo.ExistsByNumber(ctx, "RECIBO-1999-00000")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate number is rejected", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, testutil.NewDraftReceipt(t, "RECIBO-2024-10003")))

		err := repo.Save(ctx, testutil.NewDraftReceipt(t, "RECIBO-2024-10003"))
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("signed receipt keeps its hash verifiable", func(t *testing.T) {
		draft := testutil.NewDraftReceipt(t, "RECIBO-2024-10004")
		require.NoError(t, repo.Save(ctx, draft))

		signed, err := signer.AttachProviderSignature(ctx, draft, testutil.ValidSignatureParams())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, signed))

		found, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Signature)
		assert.Equal(t, receipt.StatusSigned, found.Status)
		assert.Equal(t, 2, found.Version)
		assert.Equal(t, signed.Signature.DocumentHash, found.Signature.DocumentHash)
		assert.True(t, receipt.IsWellFormedHash(found.Signature.DocumentHash))

		ok, err := signer.Verify(ctx, found)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("stale write is a concurrency conflict", func(t *testing.T) {
		draft := testutil.NewDraftReceipt(t, "RECIBO-2024-10005")
		require.NoError(t, repo.Save(ctx, draft))

		first, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)

		signed, err := signer.AttachProviderSignature(ctx, first, testutil.ValidSignatureParams())
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, signed))

		cancelled, err := receipt.CancelReceipt(second, "emitido em duplicidade", testutil.FixedTime)
		require.NoError(t, err)
		err = repo.Save(ctx, cancelled)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		found, err := repo.FindByID(ctx, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, receipt.StatusSigned, found.Status)
	})

	t.Run("FindAll filters, searches and paginates", func(t *testing.T) {
		testDB.CleanTables()
		for i := 1; i <= 5; i++ {
			params := testutil.ValidReceiptParams()
			params.Amount = decimal.NewFromInt(int64(i * 100))
			if i%2 == 0 {
				params.ProjectID = "obra-99"
				params.PayerName = "Construtora Horizonte"
			}
			r, err := receipt.New(params, fmt.Sprintf("RECIBO-2024-2000%d", i), testutil.FixedTime)
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, r))
		}

		all, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 2, OrderBy: "number", OrderDir: "asc"})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "RECIBO-2024-20001", all[0].Number)

		total, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)

		byProject := shared.Filter{Page: 1, PageSize: 10, Filters: map[string]interface{}{receipt.FilterProjectID: "obra-99"}}
		projectItems, err := repo.FindAll(ctx, byProject)
		require.NoError(t, err)
		assert.Len(t, projectItems, 2)

		searched, err := repo.Count(ctx, shared.Filter{Search: "horizonte"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), searched)

		drafts, err := repo.Count(ctx, shared.Filter{Filters: map[string]interface{}{receipt.FilterStatus: string(receipt.StatusDraft)}})
		require.NoError(t, err)
		assert.Equal(t, int64(5), drafts)
	})
}
