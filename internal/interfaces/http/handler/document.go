package handler

import (
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentHandler serves every document kind under /documents/:kind.
// Kinds are spelled as in the path, e.g. "sale", "delivery-note", "grn".
type DocumentHandler struct {
	BaseHandler
	documents *tradeapp.DocumentService
}

// NewDocumentHandler creates a DocumentHandler
func NewDocumentHandler(documents *tradeapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

func (h *DocumentHandler) kind(c *gin.Context) (trade.DocumentKind, bool) {
	kind, err := trade.ParseKind(c.Param("kind"))
	if err != nil {
		h.HandleError(c, err)
		return "", false
	}
	return kind, true
}

// Create handles POST /documents/:kind
//
// @Summary      Create document
// @Description  Create a document of the given kind. GRNs and delivery notes move stock in the same transaction; sales and purchases queue a journal request.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        kind path string true "Document kind" Enums(quote, order, sale, purchase, delivery-note, grn)
// @Param        request body tradeapp.CreateDocumentRequest true "Document"
// @Success      201 {object} dto.Response{data=tradeapp.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{kind} [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var req tradeapp.CreateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Create(c.Request.Context(), req.ToCreateCommand(tenantID, kind, nil))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// Update handles PUT /documents/:kind/:id. The line set in the body
// replaces the stored one.
//
// @Summary      Update document
// @Description  Replace the line set of a document and reconcile stock against the stored lines
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        kind path string true "Document kind" Enums(quote, order, sale, purchase, delivery-note, grn)
// @Param        id path string true "Document ID"
// @Param        request body tradeapp.UpdateDocumentRequest true "Document"
// @Success      200 {object} dto.Response{data=tradeapp.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{kind}/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Update(c.Request.Context(), req.ToUpdateCommand(tenantID, kind, id))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete handles DELETE /documents/:kind/:id
//
// @Summary      Delete document
// @Description  Soft-delete a document and revert its stock movements
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        kind path string true "Document kind" Enums(quote, order, sale, purchase, delivery-note, grn)
// @Param        id path string true "Document ID"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{kind}/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), tenantID, kind, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Get handles GET /documents/:kind/:id. Deleted documents are returned
// with ?include_deleted=true.
//
// @Summary      Get document
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        kind path string true "Document kind" Enums(quote, order, sale, purchase, delivery-note, grn)
// @Param        id path string true "Document ID"
// @Param        include_deleted query bool false "Return soft-deleted documents"
// @Success      200 {object} dto.Response{data=tradeapp.DocumentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{kind}/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	doc, err := h.documents.Get(c.Request.Context(), tenantID, kind, id, c.Query("include_deleted") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// List handles GET /documents/:kind?party_id=&page=&page_size=
//
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        kind path string true "Document kind" Enums(quote, order, sale, purchase, delivery-note, grn)
// @Param        party_id query string false "Customer or supplier ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]tradeapp.DocumentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /documents/{kind} [get]
func (h *DocumentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	filter := trade.DocumentFilter{Filter: query.ToFilter(), Kind: kind}
	if raw := c.Query("party_id"); raw != "" {
		partyID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid party_id")
			return
		}
		filter.PartyID = &partyID
	}

	page, err := h.documents.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}
