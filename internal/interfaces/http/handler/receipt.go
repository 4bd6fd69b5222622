package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	receiptapp "github.com/obra/backend/internal/application/receipt"
	"github.com/obra/backend/internal/domain/shared"
)

// ReceiptService is the application surface the receipt endpoints drive
type ReceiptService interface {
	Create(ctx context.Context, req receiptapp.CreateReceiptRequest) (*receiptapp.ReceiptResponse, error)
	Sign(ctx context.Context, id uuid.UUID, req receiptapp.SignReceiptRequest) (*receiptapp.ReceiptResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req receiptapp.CancelReceiptRequest) (*receiptapp.ReceiptResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*receiptapp.ReceiptResponse, error)
	GetByNumber(ctx context.Context, number string) (*receiptapp.ReceiptResponse, error)
	List(ctx context.Context, req receiptapp.ListReceiptsRequest) (*shared.Paginated[receiptapp.ReceiptResponse], error)
	Verify(ctx context.Context, id uuid.UUID) (*receiptapp.VerifyResponse, error)
	RenderHTML(ctx context.Context, id uuid.UUID) (string, error)
	ExportPDF(ctx context.Context, id uuid.UUID) (*receiptapp.ExportResponse, error)
}

// ReceiptHandler handles receipt endpoints
type ReceiptHandler struct {
	BaseHandler
	service ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(service ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// Create godoc
// @Summary      Issue a receipt
// @Description  Validates the payload, draws a unique number and stores the receipt as a draft
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body receiptapp.CreateReceiptRequest true "Receipt data"
// @Success      201 {object} APIResponse[receiptapp.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req receiptapp.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+resp.ID.String())
	h.Created(c, resp)
}

// List godoc
// @Summary      List receipts
// @Tags         receipts
// @Produce      json
// @Param        page       query int    false "Page number"
// @Param        page_size  query int    false "Page size (max 100)"
// @Param        order_by   query string false "Sort field"
// @Param        order_dir  query string false "asc or desc"
// @Param        search     query string false "Matches number, payer or description"
// @Param        status     query string false "rascunho, assinado or cancelado"
// @Param        project_id query string false "Project ID"
// @Success      200 {object} APIResponse[[]receiptapp.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	var req receiptapp.ListReceiptsRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @Summary      Get receipt by ID
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} APIResponse[receiptapp.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /receipts/{id} [get]
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber godoc
// @Summary      Get receipt by number
// @Tags         receipts
// @Produce      json
// @Param        numero path string true "Receipt number, e.g. REC-20240315-AB12CD"
// @Success      200 {object} APIResponse[receiptapp.ReceiptResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /receipts/number/{numero} [get]
func (h *ReceiptHandler) GetByNumber(c *gin.Context) {
	number := strings.TrimSpace(c.Param("numero"))
	if number == "" {
		h.BadRequest(c, "Receipt number is required")
		return
	}

	resp, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Sign godoc
// @Summary      Attach the provider signature
// @Description  Computes the integrity hash and moves the receipt to "assinado"
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id      path string true "Receipt ID" format(uuid)
// @Param        request body receiptapp.SignReceiptRequest true "Signature"
// @Success      200 {object} APIResponse[receiptapp.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      504 {object} ErrorResponse
// @Router       /receipts/{id}/sign [post]
func (h *ReceiptHandler) Sign(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	var req receiptapp.SignReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Sign(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary      Cancel a receipt
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id      path string true "Receipt ID" format(uuid)
// @Param        request body receiptapp.CancelReceiptRequest false "Cancellation reason"
// @Success      200 {object} APIResponse[receiptapp.ReceiptResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /receipts/{id}/cancel [post]
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	// the reason is optional, so is the body
	var req receiptapp.CancelReceiptRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Verify godoc
// @Summary      Verify receipt integrity
// @Description  Recomputes the document hash and compares it with the one stored at signing
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} APIResponse[receiptapp.VerifyResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /receipts/{id}/verify [get]
func (h *ReceiptHandler) Verify(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.service.Verify(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Document godoc
// @Summary      Printable receipt
// @Tags         receipts
// @Produce      html
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {string} string "HTML document"
// @Failure      404 {object} ErrorResponse
// @Router       /receipts/{id}/document [get]
func (h *ReceiptHandler) Document(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	html, err := h.service.RenderHTML(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// ExportPDF godoc
// @Summary      Export receipt as PDF
// @Description  Renders the printable document with headless Chrome and stores it
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      201 {object} APIResponse[receiptapp.ExportResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      501 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /receipts/{id}/pdf [post]
func (h *ReceiptHandler) ExportPDF(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}

	resp, err := h.service.ExportPDF(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
