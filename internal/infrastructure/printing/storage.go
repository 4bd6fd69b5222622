package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PDFStorage keeps exported receipt documents
type PDFStorage interface {
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// StoreRequest identifies the document being stored
type StoreRequest struct {
	ReceiptID uuid.UUID
	Number    string
	Version   int
	IssuedAt  time.Time
	PDFData   []byte
}

// StoreResult describes where the document was stored
type StoreResult struct {
	Key  string
	URL  string
	Size int64
}

// Validate checks the request before anything is written
func (r *StoreRequest) Validate() error {
	if r == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if r.ReceiptID == uuid.Nil {
		return NewRenderError(ErrCodeStorageFailed, "receipt ID is required", nil)
	}
	if strings.TrimSpace(r.Number) == "" || containsDotDot(r.Number) || strings.ContainsAny(r.Number, `/\`) {
		return NewRenderError(ErrCodeStorageFailed, "invalid receipt number", nil)
	}
	if len(r.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// ObjectKey returns the slash separated key a document is stored under:
// receipts/<year>/<month>/<numero>-v<version>.pdf
func ObjectKey(req *StoreRequest) string {
	issued := req.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	return path.Join(
		"receipts",
		fmt.Sprintf("%d", issued.Year()),
		fmt.Sprintf("%02d", issued.Month()),
		fmt.Sprintf("%s-v%d.pdf", req.Number, req.Version),
	)
}

// FileSystemStorageConfig configures FileSystemStorage
type FileSystemStorageConfig struct {
	BasePath string
	// BaseURL is the public prefix documents are served under
	BaseURL string
	Logger  *zap.Logger
}

// FileSystemStorage stores documents below a local directory
type FileSystemStorage struct {
	config *FileSystemStorageConfig
	logger *zap.Logger
}

// NewFileSystemStorage creates the base directory if needed
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	if config.BasePath == "" {
		config.BasePath = "./data/documents"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/documents"
	}
	if err := os.MkdirAll(config.BasePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BasePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemStorage{config: config, logger: logger}, nil
}

// Store writes the PDF and returns its key
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := ObjectKey(req)
	fullPath := filepath.Join(s.config.BasePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(fullPath, req.PDFData, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	url, _ := s.URL(ctx, key)
	s.logger.Info("PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)),
		zap.String("receipt_number", req.Number))

	return &StoreResult{Key: key, URL: url, Size: int64(len(req.PDFData))}, nil
}

// Get opens a stored document
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "PDF not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes a stored document; a missing file is not an error
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
	s.logger.Info("PDF deleted", zap.String("key", key))
	return nil
}

// URL returns the public URL of a key
func (s *FileSystemStorage) URL(_ context.Context, key string) (string, error) {
	return strings.TrimRight(s.config.BaseURL, "/") + "/" + path.Clean(key), nil
}

// resolve maps a key to a path inside BasePath, rejecting traversal
func (s *FileSystemStorage) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious path", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	absBase, err := filepath.Abs(s.config.BasePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.config.BasePath, clean))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return absPath, nil
}

func containsDotDot(p string) bool {
	parts := strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var _ PDFStorage = (*FileSystemStorage)(nil)
