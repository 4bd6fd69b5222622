package printing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreRequest() *StoreRequest {
	return &StoreRequest{
		ReceiptID: uuid.New(),
		Number:    "RECIBO-2024-00042",
		Version:   2,
		IssuedAt:  time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		PDFData:   []byte("%PDF-1.4 test"),
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "receipts/2024/03/RECIBO-2024-00042-v2.pdf", ObjectKey(newStoreRequest()))
}

func TestStoreRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*StoreRequest)
	}{
		{"missing receipt id", func(r *StoreRequest) { r.ReceiptID = uuid.Nil }},
		{"blank number", func(r *StoreRequest) { r.Number = " " }},
		{"number with separator", func(r *StoreRequest) { r.Number = "../etc" }},
		{"empty data", func(r *StoreRequest) { r.PDFData = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := newStoreRequest()
			tt.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			var renderErr *RenderError
			require.ErrorAs(t, err, &renderErr)
			assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
		})
	}
	assert.NoError(t, newStoreRequest().Validate())
}

func TestNewFileSystemStorage(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: tempDir})
	require.NoError(t, err)
	assert.Equal(t, "/documents", storage.config.BaseURL)
}

func TestFileSystemStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tempDir := t.TempDir()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{
		BasePath: tempDir,
		BaseURL:  "https://docs.example.com/",
	})
	require.NoError(t, err)

	req := newStoreRequest()
	result, err := storage.Store(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "receipts/2024/03/RECIBO-2024-00042-v2.pdf", result.Key)
	assert.Equal(t, "https://docs.example.com/receipts/2024/03/RECIBO-2024-00042-v2.pdf", result.URL)
	assert.Equal(t, int64(len(req.PDFData)), result.Size)

	_, err = os.Stat(filepath.Join(tempDir, "receipts", "2024", "03", "RECIBO-2024-00042-v2.pdf"))
	require.NoError(t, err)

	rc, err := storage.Get(ctx, result.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, req.PDFData, data)

	require.NoError(t, storage.Delete(ctx, result.Key))
	require.NoError(t, storage.Delete(ctx, result.Key), "deleting twice is not an error")

	_, err = storage.Get(ctx, result.Key)
	assert.Error(t, err)
}

func TestFileSystemStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"../secret.pdf", "receipts/../../secret.pdf", "/etc/passwd"} {
		t.Run(key, func(t *testing.T) {
			_, err := storage.Get(ctx, key)
			assert.Error(t, err)
			assert.Error(t, storage.Delete(ctx, key))
		})
	}
}

func TestFileSystemStorage_CancelledContext(t *testing.T) {
	storage, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = storage.Store(ctx, newStoreRequest())
	assert.Error(t, err)
}
