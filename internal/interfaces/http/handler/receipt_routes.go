package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/obra/backend/internal/interfaces/http/router"
)

// ReceiptRoutes creates the route group for receipt endpoints
func ReceiptRoutes(h *ReceiptHandler, mw ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("receipts", "/receipts")
	group.Use(mw...)

	group.Handle(http.MethodPost, "", "Issue a receipt", h.Create)
	group.Handle(http.MethodGet, "", "List receipts", h.List)
	group.Handle(http.MethodGet, "/:id", "Get a receipt", h.Get)
	group.Handle(http.MethodGet, "/number/:numero", "Get a receipt by number", h.GetByNumber)

	// Lifecycle
	group.Handle(http.MethodPost, "/:id/sign", "Attach the provider signature", h.Sign)
	group.Handle(http.MethodPost, "/:id/cancel", "Cancel a receipt", h.Cancel)
	group.Handle(http.MethodGet, "/:id/verify", "Verify the integrity hash", h.Verify)

	// Documents
	group.Handle(http.MethodGet, "/:id/document", "Printable HTML document", h.Document)
	group.Handle(http.MethodPost, "/:id/pdf", "Export and store a PDF", h.ExportPDF)

	return group
}
