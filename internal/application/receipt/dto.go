package receipt

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared/valueobject"
	"github.com/obra/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Requests
// =============================================================================

// CreateReceiptRequest represents a request to issue a receipt
type CreateReceiptRequest struct {
	ClienteNome       string          `json:"clienteNome"`
	ClienteCpfCnpj    string          `json:"clienteCpfCnpj"`
	PrestadorNome     string          `json:"prestadorNome"`
	PrestadorCpfCnpj  string          `json:"prestadorCpfCnpj"`
	PrestadorEmail    string          `json:"prestadorEmail,omitempty"`
	PrestadorTelefone string          `json:"prestadorTelefone,omitempty"`
	PrestadorEndereco string          `json:"prestadorEndereco,omitempty"`
	ProjetoID         string          `json:"projetoId,omitempty"`
	ProjetoNome       string          `json:"projetoNome,omitempty"`
	Valor             decimal.Decimal `json:"valor"`
	Moeda             string          `json:"moeda,omitempty"`
	FormaPagamento    string          `json:"formaPagamento,omitempty"`
	DescricaoServico  string          `json:"descricaoServico"`
	// Dates accept YYYY-MM-DD or RFC 3339
	DataInicioServico string `json:"dataInicioServico,omitempty"`
	DataFimServico    string `json:"dataFimServico,omitempty"`
	Observacoes       string `json:"observacoes,omitempty"`
}

// ToParams converts the request into factory params
func (r CreateReceiptRequest) ToParams() (receipt.Params, error) {
	start, err := parseOptionalDate("dataInicioServico", r.DataInicioServico)
	if err != nil {
		return receipt.Params{}, err
	}
	end, err := parseOptionalDate("dataFimServico", r.DataFimServico)
	if err != nil {
		return receipt.Params{}, err
	}

	return receipt.Params{
		PayerName:     r.ClienteNome,
		PayerTaxID:    r.ClienteCpfCnpj,
		PayeeName:     r.PrestadorNome,
		PayeeTaxID:    r.PrestadorCpfCnpj,
		PayeeEmail:    strings.TrimSpace(r.PrestadorEmail),
		PayeePhone:    r.PrestadorTelefone,
		PayeeAddress:  r.PrestadorEndereco,
		ProjectID:     r.ProjetoID,
		ProjectName:   r.ProjetoNome,
		Amount:        r.Valor,
		Currency:      valueobject.Currency(strings.ToUpper(strings.TrimSpace(r.Moeda))),
		PaymentMethod: r.FormaPagamento,
		Description:   r.DescricaoServico,
		ServiceStart:  start,
		ServiceEnd:    end,
		Notes:         r.Observacoes,
	}, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, receipt.ErrInvalidDate.WithDetails(field + ": " + value)
}

// SignReceiptRequest carries the provider signature captured by the client
type SignReceiptRequest struct {
	Nome       string `json:"nome"`
	CpfCnpj    string `json:"cpfCnpj"`
	Assinatura string `json:"assinatura"`
	Tipo       string `json:"tipo,omitempty"`
}

// ToParams converts the request into signature params
func (r SignReceiptRequest) ToParams() receipt.SignatureParams {
	return receipt.SignatureParams{
		SignerName:  r.Nome,
		SignerTaxID: r.CpfCnpj,
		Artifact:    r.Assinatura,
		Type:        receipt.SignatureType(r.Tipo),
	}
}

// CancelReceiptRequest represents a cancellation
type CancelReceiptRequest struct {
	Motivo string `json:"motivo" binding:"max=500"`
}

// ListReceiptsRequest represents list query parameters
type ListReceiptsRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search    string `form:"search"`
	Status    string `form:"status" binding:"omitempty,oneof=rascunho assinado cancelado"`
	ProjectID string `form:"project_id"`
}

// =============================================================================
// Responses
// =============================================================================

// PartyResponse is the payer of a receipt
type PartyResponse struct {
	Nome             string `json:"nome"`
	CpfCnpj          string `json:"cpfCnpj"`
	CpfCnpjFormatado string `json:"cpfCnpjFormatado"`
}

// PayeeResponse is the service provider of a receipt
type PayeeResponse struct {
	PartyResponse
	Email    string `json:"email,omitempty"`
	Telefone string `json:"telefone,omitempty"`
	Endereco string `json:"endereco,omitempty"`
}

// ProjectResponse is the project a receipt refers to
type ProjectResponse struct {
	ID   string `json:"id,omitempty"`
	Nome string `json:"nome,omitempty"`
}

// SignatureResponse describes an attached signature
type SignatureResponse struct {
	Nome          string    `json:"nome"`
	CpfCnpj       string    `json:"cpfCnpj"`
	Tipo          string    `json:"tipo"`
	Assinatura    string    `json:"assinatura"`
	AssinadoEm    time.Time `json:"assinadoEm"`
	HashDocumento string    `json:"hashDocumento"`
}

// ReceiptResponse represents a receipt in API responses
type ReceiptResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Numero             string             `json:"numero"`
	Cliente            PartyResponse      `json:"cliente"`
	Prestador          PayeeResponse      `json:"prestador"`
	Projeto            *ProjectResponse   `json:"projeto,omitempty"`
	Valor              decimal.Decimal    `json:"valor"`
	ValorFormatado     string             `json:"valorFormatado"`
	Moeda              string             `json:"moeda"`
	FormaPagamento     string             `json:"formaPagamento,omitempty"`
	DescricaoServico   string             `json:"descricaoServico"`
	DataInicioServico  *time.Time         `json:"dataInicioServico,omitempty"`
	DataFimServico     *time.Time         `json:"dataFimServico,omitempty"`
	Observacoes        string             `json:"observacoes,omitempty"`
	Status             string             `json:"status"`
	StatusDescricao    string             `json:"statusDescricao"`
	DataEmissao        time.Time          `json:"dataEmissao"`
	Assinatura         *SignatureResponse `json:"assinatura,omitempty"`
	CanceladoEm        *time.Time         `json:"canceladoEm,omitempty"`
	MotivoCancelamento string             `json:"motivoCancelamento,omitempty"`
	Avisos             []string           `json:"avisos,omitempty"`
	Versao             int                `json:"versao"`
	CriadoEm           time.Time          `json:"criadoEm"`
	AtualizadoEm       time.Time          `json:"atualizadoEm"`
}

// VerifyResponse reports the outcome of an integrity check
type VerifyResponse struct {
	ID            uuid.UUID `json:"id"`
	Numero        string    `json:"numero"`
	Integro       bool      `json:"integro"`
	HashDocumento string    `json:"hashDocumento"`
	VerificadoEm  time.Time `json:"verificadoEm"`
}

// ExportResponse describes a stored PDF export
type ExportResponse struct {
	ID        uuid.UUID `json:"id"`
	Numero    string    `json:"numero"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	PageCount int       `json:"pageCount"`
}

// ToReceiptResponse converts a domain receipt to its API representation
func ToReceiptResponse(r *receipt.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:     r.ID,
		Numero: r.Number,
		Cliente: PartyResponse{
			Nome:             r.Payer.Name,
			CpfCnpj:          r.Payer.TaxID,
			CpfCnpjFormatado: printing.FormatTaxID(r.Payer.TaxID),
		},
		Prestador: PayeeResponse{
			PartyResponse: PartyResponse{
				Nome:             r.Payee.Name,
				CpfCnpj:          r.Payee.TaxID,
				CpfCnpjFormatado: printing.FormatTaxID(r.Payee.TaxID),
			},
			Email:    r.Payee.Email,
			Telefone: r.Payee.Phone,
			Endereco: r.Payee.Address,
		},
		Valor:              r.Amount,
		Moeda:              r.Currency.OrDefault().String(),
		FormaPagamento:     r.PaymentMethod,
		DescricaoServico:   r.Description,
		DataInicioServico:  r.ServiceStart,
		DataFimServico:     r.ServiceEnd,
		Observacoes:        r.Notes,
		Status:             r.Status.String(),
		StatusDescricao:    r.Status.DisplayName(),
		DataEmissao:        r.IssuedAt,
		CanceladoEm:        r.CancelledAt,
		MotivoCancelamento: r.CancellationReason,
		Avisos:             r.Warnings(),
		Versao:             r.Version,
		CriadoEm:           r.CreatedAt,
		AtualizadoEm:       r.UpdatedAt,
	}
	if formatted, err := printing.FormatCurrency(r.Amount, r.Currency); err == nil {
		resp.ValorFormatado = formatted
	}
	if r.Project != nil {
		resp.Projeto = &ProjectResponse{ID: r.Project.ID, Nome: r.Project.Name}
	}
	if s := r.Signature; s != nil {
		resp.Assinatura = &SignatureResponse{
			Nome:          s.SignerName,
			CpfCnpj:       s.SignerTaxID,
			Tipo:          s.Type.String(),
			Assinatura:    s.Artifact,
			AssinadoEm:    s.SignedAt,
			HashDocumento: s.DocumentHash,
		}
	}
	return resp
}
