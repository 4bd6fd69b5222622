package receipt

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// maxFractionDigits is the precision a currency amount may carry
const maxFractionDigits = 2

// Params are the inputs of receipt creation. The field tag carries the name
// reported in validation details.
type Params struct {
	PayerName     string               `field:"clienteNome" validate:"notblank,max=200"`
	PayerTaxID    string               `field:"clienteCpfCnpj" validate:"notblank,taxid"`
	PayeeName     string               `field:"prestadorNome" validate:"notblank,max=200"`
	PayeeTaxID    string               `field:"prestadorCpfCnpj" validate:"notblank,taxid"`
	PayeeEmail    string               `field:"prestadorEmail" validate:"omitempty,email"`
	PayeePhone    string               `field:"prestadorTelefone" validate:"omitempty,max=30"`
	PayeeAddress  string               `field:"prestadorEndereco" validate:"omitempty,max=300"`
	ProjectID     string               `field:"projetoId" validate:"omitempty,max=64"`
	ProjectName   string               `field:"projetoNome" validate:"omitempty,max=200"`
	Amount        decimal.Decimal      `field:"valor"`
	Currency      valueobject.Currency `field:"moeda" validate:"omitempty,iso4217"`
	PaymentMethod string               `field:"formaPagamento" validate:"omitempty,max=100"`
	Description   string               `field:"descricaoServico" validate:"notblank,max=2000"`
	ServiceStart  *time.Time           `field:"dataInicioServico"`
	ServiceEnd    *time.Time           `field:"dataFimServico"`
	Notes         string               `field:"observacoes" validate:"omitempty,max=2000"`
}

// SignatureParams are supplied by the signature capture surface
type SignatureParams struct {
	SignerName  string        `field:"nome" validate:"notblank,max=200"`
	SignerTaxID string        `field:"cpfCnpj" validate:"notblank"`
	Artifact    string        `field:"assinatura" validate:"notblank"`
	Type        SignatureType `field:"tipo" validate:"omitempty,oneof=desenho digitado upload"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}
		return fld.Name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("taxid", ValidateTaxID)
	return v
}

// ValidateTaxID is a validator func accepting 11 (CPF) or 14 (CNPJ) digit ids,
// ignoring punctuation
func ValidateTaxID(fl validator.FieldLevel) bool {
	return valueobject.NewTaxID(fl.Field().String()).IsValid()
}

// Validate checks every constraint and returns INVALID_RECEIPT_PARAMS listing
// all violations, sorted for stable output.
func (p Params) Validate() error {
	violations := structViolations(p)
	if p.Amount.IsNegative() {
		violations = append(violations, "valor: must be greater than or equal to 0")
	}
	if !p.Amount.Equal(p.Amount.Truncate(maxFractionDigits)) {
		violations = append(violations, fmt.Sprintf("valor: must have at most %d decimal places", maxFractionDigits))
	}
	if len(violations) == 0 {
		return nil
	}
	sort.Strings(violations)
	return ErrInvalidReceiptParams.WithDetails(violations...)
}

// Validate checks the signature params and returns INVALID_SIGNATURE_PARAMS
func (p SignatureParams) Validate() error {
	violations := structViolations(p)
	if len(violations) == 0 {
		return nil
	}
	sort.Strings(violations)
	return ErrInvalidSignatureParams.WithDetails(violations...)
}

func structViolations(s any) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Field()+": "+describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "notblank", "required":
		return "is required"
	case "taxid":
		return "must be a CPF (11 digits) or CNPJ (14 digits)"
	case "email":
		return "must be a valid email address"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
