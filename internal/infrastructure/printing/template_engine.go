package printing

import (
	"bytes"
	"context"
	"html/template"
	"maps"
	"strings"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders html/template documents with the pt-BR helper
// functions registered
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures a TemplateEngine
type TemplateEngineOption func(*TemplateEngine)

// WithFuncs registers additional template functions, overriding built-ins
// with the same name
func WithFuncs(funcs template.FuncMap) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcMap, funcs)
	}
}

// NewTemplateEngine creates a template engine with the built-in functions
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	upper := cases.Upper(language.BrazilianPortuguese)

	e := &TemplateEngine{}
	e.funcMap = template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     FormatDate,
		"formatDateTime": FormatDateTime,
		"formatDateLong": FormatDateLong,
		"formatTaxID":    FormatTaxID,

		"upper":   upper.String,
		"trim":    strings.TrimSpace,
		"default": defaultString,

		"signatureSrc": signatureSrc,
		"statusText":   statusText,
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Parse compiles a template with the engine's functions
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	return tmpl, nil
}

// Execute runs a parsed template against data
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *template.Template, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "render cancelled", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderString parses and executes a template string in one step
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	return e.Execute(ctx, tmpl, data)
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatMoney is FormatCurrency with an optional currency argument
func formatMoney(amount any, currency ...valueobject.Currency) (string, error) {
	var c valueobject.Currency
	if len(currency) > 0 {
		c = currency[0]
	}
	return FormatCurrency(amount, c)
}

func defaultString(def, val string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return val
}

// signatureSrc lets image data URLs and https URLs through html/template's
// URL filter; anything else renders as an empty src
func signatureSrc(artifact string) template.URL {
	a := strings.TrimSpace(artifact)
	lower := strings.ToLower(a)
	if strings.HasPrefix(lower, "data:image/") || strings.HasPrefix(lower, "https://") {
		return template.URL(a)
	}
	return ""
}

func statusText(s receipt.Status) string {
	return s.DisplayName()
}
