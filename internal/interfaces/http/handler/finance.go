package handler

import (
	financeapp "github.com/erp/ledger/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccountHandler manages a tenant's chart of accounts
type AccountHandler struct {
	BaseHandler
	accounts *financeapp.AccountService
}

// NewAccountHandler creates an AccountHandler
func NewAccountHandler(accounts *financeapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Seed handles POST /accounts/seed. Seeding twice is a no-op.
//
// @Summary      Seed chart of accounts
// @Description  Create the default accounts; seeding twice is a no-op
// @Tags         accounts
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      201 {object} dto.Response{data=[]financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/seed [post]
func (h *AccountHandler) Seed(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	accounts, err := h.accounts.SeedChartOfAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, accounts)
}

// List handles GET /accounts
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Success      200 {object} dto.Response{data=[]financeapp.AccountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	accounts, err := h.accounts.ListAccounts(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// Delete handles DELETE /accounts/:id
//
// @Summary      Delete account
// @Description  Accounts referenced by journal lines cannot be deleted
// @Tags         accounts
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Account ID"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/{id} [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.accounts.DeleteAccount(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// JournalEntryHandler serves manual entries plus post and reverse for any entry
type JournalEntryHandler struct {
	BaseHandler
	entries *financeapp.JournalEntryService
}

// NewJournalEntryHandler creates a JournalEntryHandler
func NewJournalEntryHandler(entries *financeapp.JournalEntryService) *JournalEntryHandler {
	return &JournalEntryHandler{entries: entries}
}

// ReverseEntryResponse names the entry created by a reversal
type ReverseEntryResponse struct {
	ReversedEntryID uuid.UUID `json:"reversed_entry_id"`
	ReversalID      uuid.UUID `json:"reversal_id"`
}

// Create handles POST /journal-entries. Manual entries start unposted.
//
// @Summary      Create manual journal entry
// @Tags         journal
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body financeapp.CreateManualEntryRequest true "Entry"
// @Success      201 {object} dto.Response{data=financeapp.JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /journal-entries [post]
func (h *JournalEntryHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req financeapp.CreateManualEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.entries.CreateManual(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Get handles GET /journal-entries/:id
//
// @Summary      Get journal entry
// @Tags         journal
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Journal entry ID"
// @Success      200 {object} dto.Response{data=financeapp.JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /journal-entries/{id} [get]
func (h *JournalEntryHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.entries.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// List handles GET /journal-entries
//
// @Summary      List journal entries
// @Tags         journal
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]financeapp.JournalEntryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /journal-entries [get]
func (h *JournalEntryHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}
	page, err := h.entries.List(c.Request.Context(), tenantID, query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Post handles POST /journal-entries/:id/post
//
// @Summary      Post journal entry
// @Tags         journal
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Journal entry ID"
// @Success      200 {object} dto.Response{data=financeapp.JournalEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /journal-entries/{id}/post [post]
func (h *JournalEntryHandler) Post(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entry, err := h.entries.Post(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Reverse handles POST /journal-entries/:id/reverse. The body is optional.
//
// @Summary      Reverse journal entry
// @Description  Create a posted entry with debits and credits swapped
// @Tags         journal
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Journal entry ID"
// @Param        request body financeapp.ReverseEntryRequest false "Reason"
// @Success      201 {object} dto.Response{data=ReverseEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /journal-entries/{id}/reverse [post]
func (h *JournalEntryHandler) Reverse(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req financeapp.ReverseEntryRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	reversalID, err := h.entries.Reverse(c.Request.Context(), tenantID, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ReverseEntryResponse{ReversedEntryID: id, ReversalID: reversalID})
}

// PaymentHandler records money received and paid
type PaymentHandler struct {
	BaseHandler
	payments *financeapp.PaymentService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(payments *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create handles POST /payments. The entry is posted asynchronously; the
// response carries journal_status PENDING.
//
// @Summary      Record payment
// @Description  The journal entry is posted asynchronously; journal_status starts as PENDING
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        request body financeapp.CreatePaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=financeapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req financeapp.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.payments.CreatePayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// Get handles GET /payments/:id
//
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Payment ID"
// @Success      200 {object} dto.Response{data=financeapp.PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// Delete handles DELETE /payments/:id
//
// @Summary      Delete payment
// @Description  Soft-delete a payment and reverse its journal entry
// @Tags         payments
// @Produce      json
// @Param        X-Tenant-ID header string true "Tenant ID"
// @Param        id path string true "Payment ID"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.payments.DeletePayment(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
