package printing

import (
	"context"
	"html/template"

	"github.com/obra/backend/internal/domain/receipt"
)

// ReceiptRenderer renders receipts to self-contained HTML documents
type ReceiptRenderer struct {
	engine *TemplateEngine
	tmpl   *template.Template
}

// ReceiptRendererOption configures a ReceiptRenderer
type ReceiptRendererOption func(*receiptRendererConfig)

type receiptRendererConfig struct {
	engine  *TemplateEngine
	content string
}

// WithTemplateEngine sets the engine used to parse the layout
func WithTemplateEngine(engine *TemplateEngine) ReceiptRendererOption {
	return func(c *receiptRendererConfig) {
		c.engine = engine
	}
}

// WithReceiptTemplate replaces the built-in layout
func WithReceiptTemplate(content string) ReceiptRendererOption {
	return func(c *receiptRendererConfig) {
		c.content = content
	}
}

// NewReceiptRenderer parses the layout once; a malformed custom layout is
// reported here rather than on every render
func NewReceiptRenderer(opts ...ReceiptRendererOption) (*ReceiptRenderer, error) {
	cfg := &receiptRendererConfig{content: DefaultReceiptTemplate}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.engine == nil {
		cfg.engine = NewTemplateEngine()
	}

	tmpl, err := cfg.engine.Parse("receipt", cfg.content)
	if err != nil {
		return nil, err
	}
	return &ReceiptRenderer{engine: cfg.engine, tmpl: tmpl}, nil
}

// Render produces the printable document for r. It has no side effects.
func (r *ReceiptRenderer) Render(ctx context.Context, rc *receipt.Receipt) (string, error) {
	if rc == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "receipt is nil", nil)
	}
	return r.engine.Execute(ctx, r.tmpl, rc)
}
