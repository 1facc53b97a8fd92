package handler

import (
	catalogapp "github.com/erp/ledger/internal/application/catalog"
	identityapp "github.com/erp/ledger/internal/application/identity"
	taxapp "github.com/erp/ledger/internal/application/tax"
	"github.com/gin-gonic/gin"
)

// TenantHandler registers tenants and edits their ledger settings. Its
// routes are not tenant-scoped: the tenant is the resource.
type TenantHandler struct {
	BaseHandler
	tenants *identityapp.TenantService
}

// NewTenantHandler creates a TenantHandler
func NewTenantHandler(tenants *identityapp.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create handles POST /tenants
//
// @Summary      Create tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body identityapp.CreateTenantRequest true "Tenant"
// @Success      201 {object} dto.Response{data=identityapp.TenantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req identityapp.CreateTenantRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenants.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// Get handles GET /tenants/:id
//
// @Summary      Get tenant
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} dto.Response{data=identityapp.TenantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	tenant, err := h.tenants.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// UpdateSettings handles PUT /tenants/:id/settings
//
// @Summary      Update tenant settings
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Param        request body identityapp.TenantSettingsRequest true "Settings"
// @Success      200 {object} dto.Response{data=identityapp.TenantResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /tenants/{id}/settings [put]
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req identityapp.TenantSettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenant, err := h.tenants.UpdateSettings(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// ItemHandler manages the items documents refer to
type ItemHandler struct {
	BaseHandler
	items *catalogapp.ItemService
}

// NewItemHandler creates an ItemHandler
func NewItemHandler(items *catalogapp.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// Create handles POST /items
//
// @Summary      Create item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body catalogapp.CreateItemRequest true "Item"
// @Success      201 {object} dto.Response{data=catalogapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /items [post]
func (h *ItemHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req catalogapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Get handles GET /items/:id
//
// @Summary      Get item
// @Tags         items
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Item ID"
// @Success      200 {object} dto.Response{data=catalogapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /items/{id} [get]
func (h *ItemHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.items.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete handles DELETE /items/:id
//
// @Summary      Delete item
// @Description  Items referenced by live documents cannot be deleted
// @Tags         items
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Item ID"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /items/{id} [delete]
func (h *ItemHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.items.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TaxHandler manages tax schemes
type TaxHandler struct {
	BaseHandler
	taxes *taxapp.Service
}

// NewTaxHandler creates a TaxHandler
func NewTaxHandler(taxes *taxapp.Service) *TaxHandler {
	return &TaxHandler{taxes: taxes}
}

// Create handles POST /taxes
//
// @Summary      Create tax scheme
// @Tags         taxes
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body taxapp.CreateTaxRequest true "Tax scheme"
// @Success      201 {object} dto.Response{data=taxapp.TaxResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxes [post]
func (h *TaxHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req taxapp.CreateTaxRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tax, err := h.taxes.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tax)
}

// List handles GET /taxes, active schemes only
//
// @Summary      List active tax schemes
// @Tags         taxes
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      200 {object} dto.Response{data=[]taxapp.TaxResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxes [get]
func (h *TaxHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	taxes, err := h.taxes.ListActive(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, taxes)
}

// Deactivate handles DELETE /taxes/:id. Lines keep the rate they captured.
//
// @Summary      Deactivate tax scheme
// @Description  Existing lines keep the rate they captured
// @Tags         taxes
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Tax scheme ID"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /taxes/{id} [delete]
func (h *TaxHandler) Deactivate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.taxes.Deactivate(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
