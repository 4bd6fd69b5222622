package receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/obra/backend/internal/domain/printing"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/infrastructure/cache"
	"github.com/obra/backend/internal/infrastructure/logger"
	infra "github.com/obra/backend/internal/infrastructure/printing"
	"github.com/obra/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	defaultNumberAttempts = 5
	documentKindHTML      = "html"
	documentKindPDF       = "pdf"
)

// ErrPDFDisabled is returned by ExportPDF when no PDF renderer is configured
var ErrPDFDisabled = shared.NewDomainError("PDF_DISABLED", "PDF export is not enabled")

// DocumentRenderer renders the printable HTML document of a receipt
type DocumentRenderer interface {
	Render(ctx context.Context, r *receipt.Receipt) (string, error)
}

// Metrics records receipt lifecycle measurements.
// *telemetry.ReceiptMetrics satisfies it, including as a nil pointer.
type Metrics interface {
	RecordIssued(ctx context.Context, currency string)
	RecordSigned(ctx context.Context, signatureType string)
	RecordCancelled(ctx context.Context, fromStatus string)
	RecordRender(ctx context.Context, kind string, d time.Duration, outcome string)
}

// Config holds service settings
type Config struct {
	NumberAttempts   int
	DocumentCacheTTL time.Duration
	Page             printing.PageSetup
}

// ReceiptService orchestrates the receipt lifecycle: issue, sign, cancel,
// verify and render.
type ReceiptService struct {
	repo        receipt.ReceiptRepository
	factory     *receipt.Factory
	signer      *receipt.Signer
	renderer    DocumentRenderer
	pdfRenderer infra.PDFRenderer
	pdfStorage  infra.PDFStorage
	documents   cache.DocumentCache
	events      shared.EventPublisher
	metrics     Metrics
	cfg         Config
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a ReceiptService
type Option func(*ReceiptService)

// WithPDFExport enables ExportPDF
func WithPDFExport(renderer infra.PDFRenderer, storage infra.PDFStorage) Option {
	return func(s *ReceiptService) {
		s.pdfRenderer = renderer
		s.pdfStorage = storage
	}
}

// WithDocumentCache caches rendered HTML documents
func WithDocumentCache(c cache.DocumentCache) Option {
	return func(s *ReceiptService) {
		s.documents = c
	}
}

// WithEventPublisher publishes domain events after every successful save
func WithEventPublisher(p shared.EventPublisher) Option {
	return func(s *ReceiptService) {
		s.events = p
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *ReceiptService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithConfig sets service settings
func WithConfig(cfg Config) Option {
	return func(s *ReceiptService) {
		s.cfg = cfg
	}
}

// WithClock sets the time source for cancellation and verification timestamps
func WithClock(now func() time.Time) Option {
	return func(s *ReceiptService) {
		s.now = now
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *ReceiptService) {
		s.logger = l
	}
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	repo receipt.ReceiptRepository,
	factory *receipt.Factory,
	signer *receipt.Signer,
	renderer DocumentRenderer,
	opts ...Option,
) *ReceiptService {
	s := &ReceiptService{
		repo:     repo,
		factory:  factory,
		signer:   signer,
		renderer: renderer,
		metrics:  (*telemetry.ReceiptMetrics)(nil),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.NumberAttempts <= 0 {
		s.cfg.NumberAttempts = defaultNumberAttempts
	}
	s.cfg.Page = s.cfg.Page.Normalize()
	return s
}

// log returns the request scoped logger enriched with the service's fields
func (s *ReceiptService) log(ctx context.Context) *zap.Logger {
	if id := logger.GetRequestID(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

// =============================================================================
// Lifecycle
// =============================================================================

// Create issues a new draft receipt. Numbers already in use are redrawn up to
// NumberAttempts times.
func (s *ReceiptService) Create(ctx context.Context, req CreateReceiptRequest) (resp *ReceiptResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.create")
	defer func() { telemetry.EndSpan(span, err) }()

	params, err := req.ToParams()
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.cfg.NumberAttempts; attempt++ {
		number := s.factory.NextNumber()
		exists, err := s.repo.ExistsByNumber(ctx, number)
		if err != nil {
			return nil, fmt.Errorf("failed to check receipt number: %w", err)
		}
		if exists {
			s.log(ctx).Debug("receipt number taken, drawing another",
				zap.String("numero", number), zap.Int("attempt", attempt))
			continue
		}

		r, err := s.factory.CreateWithNumber(params, number)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(ctx, r); err != nil {
			// lost a race for the number
			if errors.Is(err, shared.ErrAlreadyExists) {
				continue
			}
			return nil, fmt.Errorf("failed to save receipt: %w", err)
		}

		s.metrics.RecordIssued(ctx, r.Currency.String())
		s.publish(ctx, r)
		span.SetAttributes(attribute.String("receipt.id", r.ID.String()), attribute.String("receipt.numero", r.Number))
		s.log(ctx).Info("receipt issued",
			zap.String("receipt_id", r.ID.String()),
			zap.String("numero", r.Number),
			zap.String("valor", r.Amount.StringFixed(2)))
		return ToReceiptResponse(r), nil
	}

	return nil, shared.ErrAlreadyExists.WithDetails(
		fmt.Sprintf("no unused receipt number after %d attempts", s.cfg.NumberAttempts))
}

// Sign attaches the provider signature to a draft receipt
func (s *ReceiptService) Sign(ctx context.Context, id uuid.UUID, req SignReceiptRequest) (resp *ReceiptResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.sign", attribute.String("receipt.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	signed, err := s.signer.AttachProviderSignature(ctx, current, req.ToParams())
	if err != nil {
		s.log(ctx).Warn("signature rejected",
			zap.String("receipt_id", id.String()),
			zap.String("code", shared.CodeOf(err)),
			zap.Error(err))
		return nil, err
	}

	if err := s.repo.Save(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to save signed receipt: %w", err)
	}

	s.metrics.RecordSigned(ctx, signed.Signature.Type.String())
	s.publish(ctx, signed)
	s.log(ctx).Info("receipt signed",
		zap.String("receipt_id", id.String()),
		zap.String("numero", signed.Number),
		zap.String("hash", signed.Signature.DocumentHash))
	return ToReceiptResponse(signed), nil
}

// Cancel voids a draft or signed receipt
func (s *ReceiptService) Cancel(ctx context.Context, id uuid.UUID, req CancelReceiptRequest) (resp *ReceiptResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.cancel", attribute.String("receipt.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cancelled, err := receipt.CancelReceipt(current, strings.TrimSpace(req.Motivo), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, cancelled); err != nil {
		return nil, fmt.Errorf("failed to save cancelled receipt: %w", err)
	}

	s.metrics.RecordCancelled(ctx, current.Status.String())
	s.publish(ctx, cancelled)
	s.log(ctx).Info("receipt cancelled",
		zap.String("receipt_id", id.String()),
		zap.String("from_status", current.Status.String()))
	return ToReceiptResponse(cancelled), nil
}

// publish hands pending events to the publisher and clears them. Events are
// published after the save, so a failing handler never undoes the change.
func (s *ReceiptService) publish(ctx context.Context, r *receipt.Receipt) {
	events := r.GetDomainEvents()
	r.ClearDomainEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.log(ctx).Error("failed to publish receipt events",
			zap.String("receipt_id", r.ID.String()),
			zap.Error(err))
	}
}

// =============================================================================
// Queries
// =============================================================================

// Get returns a receipt by ID
func (s *ReceiptService) Get(ctx context.Context, id uuid.UUID) (*ReceiptResponse, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToReceiptResponse(r), nil
}

// GetByNumber returns a receipt by its display number
func (s *ReceiptService) GetByNumber(ctx context.Context, number string) (*ReceiptResponse, error) {
	r, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return ToReceiptResponse(r), nil
}

// List returns a page of receipts
func (s *ReceiptService) List(ctx context.Context, req ListReceiptsRequest) (*shared.Paginated[ReceiptResponse], error) {
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = strings.ToLower(req.OrderDir)
	}
	filter.Search = strings.TrimSpace(req.Search)
	if req.Status != "" {
		status := receipt.Status(req.Status)
		if !status.IsValid() {
			return nil, shared.ErrInvalidInput.WithDetails("status: " + req.Status)
		}
		filter.Filters[receipt.FilterStatus] = status.String()
	}
	if req.ProjectID != "" {
		filter.Filters[receipt.FilterProjectID] = req.ProjectID
	}

	receipts, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	items := make([]ReceiptResponse, len(receipts))
	for i := range receipts {
		items[i] = *ToReceiptResponse(&receipts[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Verify recomputes the integrity hash of a signed receipt
func (s *ReceiptService) Verify(ctx context.Context, id uuid.UUID) (resp *VerifyResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.verify", attribute.String("receipt.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.signer.Verify(ctx, r)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log(ctx).Warn("receipt failed integrity check",
			zap.String("receipt_id", id.String()),
			zap.String("numero", r.Number))
	}
	return &VerifyResponse{
		ID:            r.ID,
		Numero:        r.Number,
		Integro:       ok,
		HashDocumento: r.Signature.DocumentHash,
		VerificadoEm:  s.now(),
	}, nil
}

// =============================================================================
// Documents
// =============================================================================

// RenderHTML returns the printable HTML document, served from the document
// cache when an entry for the current version exists
func (s *ReceiptService) RenderHTML(ctx context.Context, id uuid.UUID) (html string, err error) {
	ctx, span := telemetry.StartSpan(ctx, "receipt.render_html", attribute.String("receipt.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.renderHTML(ctx, r)
}

func (s *ReceiptService) renderHTML(ctx context.Context, r *receipt.Receipt) (string, error) {
	key := cache.DocumentKey(r.ID, r.Version, documentKindHTML)
	if s.documents != nil {
		cached, found, err := s.documents.Get(ctx, key)
		if err != nil {
			s.log(ctx).Warn("document cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return string(cached), nil
		}
	}

	start := time.Now()
	html, err := s.renderer.Render(ctx, r)
	if err != nil {
		s.metrics.RecordRender(ctx, documentKindHTML, time.Since(start), telemetry.OutcomeError)
		return "", err
	}
	s.metrics.RecordRender(ctx, documentKindHTML, time.Since(start), telemetry.OutcomeSuccess)

	if s.documents != nil {
		if err := s.documents.Set(ctx, key, []byte(html), s.cfg.DocumentCacheTTL); err != nil {
			s.log(ctx).Warn("document cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return html, nil
}

// ExportPDF renders the document to PDF and stores it
func (s *ReceiptService) ExportPDF(ctx context.Context, id uuid.UUID) (resp *ExportResponse, err error) {
	if s.pdfRenderer == nil || s.pdfStorage == nil {
		return nil, ErrPDFDisabled
	}

	ctx, span := telemetry.StartSpan(ctx, "receipt.export_pdf", attribute.String("receipt.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	html, err := s.renderHTML(ctx, r)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.pdfRenderer.Render(ctx, &infra.RenderRequest{
		HTML:  html,
		Page:  s.cfg.Page,
		Title: "Recibo " + r.Number,
	})
	if err != nil {
		outcome := telemetry.OutcomeError
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) && renderErr.Code == infra.ErrCodeRenderTimeout {
			outcome = telemetry.OutcomeTimeout
		}
		s.metrics.RecordRender(ctx, documentKindPDF, time.Since(start), outcome)
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	s.metrics.RecordRender(ctx, documentKindPDF, time.Since(start), telemetry.OutcomeSuccess)

	stored, err := s.pdfStorage.Store(ctx, &infra.StoreRequest{
		ReceiptID: r.ID,
		Number:    r.Number,
		Version:   r.Version,
		IssuedAt:  r.IssuedAt,
		PDFData:   result.PDFData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store PDF: %w", err)
	}

	s.log(ctx).Info("receipt exported",
		zap.String("receipt_id", r.ID.String()),
		zap.String("key", stored.Key),
		zap.Int64("size", stored.Size),
		zap.Int("pages", result.PageCount))

	return &ExportResponse{
		ID:        r.ID,
		Numero:    r.Number,
		Key:       stored.Key,
		URL:       stored.URL,
		Size:      stored.Size,
		PageCount: result.PageCount,
	}, nil
}
