package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appcatalog "github.com/erp/ledger/internal/application/catalog"
	appevent "github.com/erp/ledger/internal/application/event"
	appfinance "github.com/erp/ledger/internal/application/finance"
	appidentity "github.com/erp/ledger/internal/application/identity"
	appinv "github.com/erp/ledger/internal/application/inventory"
	appshared "github.com/erp/ledger/internal/application/shared"
	apptax "github.com/erp/ledger/internal/application/tax"
	apptrade "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta     `json:"meta"`
}

type apiFixture struct {
	*testutil.Ledger
	engine *gin.Engine
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	middleware.SetupValidator()

	l := testutil.NewLedger(t)
	preparer := appshared.NewDocumentPreparer(apptax.NewEngine(l.Logger))
	coordinator := appinv.NewStockMovementCoordinator(l.Scope, l.Locker, preparer, nil, l.Logger)
	journals := appfinance.NewJournalEntryService(l.Scope, nil, l.Logger)
	l.Subscribe(appfinance.NewJournalRequestHandler(l.Scope, journals, nil, l.Logger))

	engine := gin.New()
	engine.Use(middleware.RequestID())
	RegisterAPI(engine, Handlers{
		System:    handler.NewSystemHandler(l.DB, "test"),
		Tenants:   handler.NewTenantHandler(appidentity.NewTenantService(l.Scope, l.Logger)),
		Items:     handler.NewItemHandler(appcatalog.NewItemService(l.Scope, l.Logger)),
		Taxes:     handler.NewTaxHandler(apptax.NewService(l.Scope, l.Logger)),
		Documents: handler.NewDocumentHandler(apptrade.NewDocumentService(l.Scope, preparer, coordinator, nil, l.Logger)),
		Stock:     handler.NewStockHandler(appinv.NewStockService(l.Scope, l.Locker, nil, l.Logger)),
		Accounts:  handler.NewAccountHandler(appfinance.NewAccountService(l.Scope, l.Logger)),
		Journal:   handler.NewJournalEntryHandler(journals),
		Payments:  handler.NewPaymentHandler(appfinance.NewPaymentService(l.Scope, nil, l.Logger)),
		Outbox:    handler.NewOutboxHandler(appevent.NewOutboxService(l.Outbox, l.Logger)),
		Gatherer:  metrics.NewRegistry(),
	})

	return &apiFixture{Ledger: l, engine: engine}
}

func (f *apiFixture) do(t *testing.T, method, path string, tenantID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tenantID != uuid.Nil {
		req.Header.Set("X-Tenant-ID", tenantID.String())
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func mustCreate[T any](t *testing.T, f *apiFixture, path string, tenantID uuid.UUID, body any) T {
	t.Helper()
	w := f.do(t, http.MethodPost, path, tenantID, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[T](t, w).Data
}

// seedTenant registers a tenant with 18% tax, an item and a seeded chart
func (f *apiFixture) seedTenant(t *testing.T, code string) (tenantID, taxID, itemID uuid.UUID) {
	t.Helper()
	tenant := mustCreate[appidentity.TenantResponse](t, f, "/api/v1/tenants", uuid.Nil,
		appidentity.CreateTenantRequest{Code: code, Name: code + " Ltd"})
	_ = mustCreate[[]appfinance.AccountResponse](t, f, "/api/v1/accounts/seed", tenant.ID, nil)
	gst := mustCreate[apptax.TaxResponse](t, f, "/api/v1/taxes", tenant.ID, apptax.CreateTaxRequest{
		Name:     "GST18",
		SubRates: []apptax.SubRateInput{{Name: "CGST", Rate: decimal.NewFromInt(9)}, {Name: "SGST", Rate: decimal.NewFromInt(9)}},
	})
	item := mustCreate[appcatalog.ItemResponse](t, f, "/api/v1/items", tenant.ID, appcatalog.CreateItemRequest{Name: "Widget", UQC: "NOS"})
	return tenant.ID, gst.ID, item.ID
}

func documentBody(itemID uuid.UUID, taxID *uuid.UUID, qty, price int64) apptrade.CreateDocumentRequest {
	return apptrade.CreateDocumentRequest{
		PartyID: testutil.NewTestUUID("party"),
		Lines: []apptrade.DocumentLineInput{{
			ItemID:    itemID,
			Quantity:  decimal.NewFromInt(qty),
			UnitPrice: decimal.NewFromInt(price),
			TaxID:     taxID,
		}},
	}
}

func TestAPI_ReceiveSellAndPost(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, taxID, itemID := f.seedTenant(t, "ACME")

	grn := mustCreate[apptrade.DocumentResponse](t, f, "/api/v1/documents/grn", tenantID, documentBody(itemID, nil, 10, 50))
	assert.Equal(t, "GRN", grn.Kind)
	assert.Equal(t, "GRN-0001", grn.Number)

	dn := mustCreate[apptrade.DocumentResponse](t, f, "/api/v1/documents/delivery-note", tenantID, documentBody(itemID, nil, 4, 0))
	assert.Equal(t, "DELIVERY_NOTE", dn.Kind)

	w := f.do(t, http.MethodGet, "/api/v1/stock/"+itemID.String(), tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stock := decode[handler.StockResponse](t, w).Data
	assert.True(t, decimal.NewFromInt(6).Equal(stock.Quantity), stock.Quantity.String())

	sale := mustCreate[apptrade.DocumentResponse](t, f, "/api/v1/documents/sale", tenantID, documentBody(itemID, &taxID, 2, 100))
	assert.True(t, decimal.RequireFromString("236").Equal(sale.Total), sale.Total.String())
	assert.Equal(t, "PENDING", sale.JournalStatus)

	require.Equal(t, 1, f.Drain(t))

	w = f.do(t, http.MethodGet, "/api/v1/documents/sale/"+sale.ID.String(), tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	posted := decode[apptrade.DocumentResponse](t, w).Data
	assert.Equal(t, "POSTED", posted.JournalStatus)
	require.NotNil(t, posted.JournalEntryID)

	w = f.do(t, http.MethodGet, "/api/v1/journal-entries/"+posted.JournalEntryID.String(), tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry := decode[appfinance.JournalEntryResponse](t, w).Data
	assert.True(t, entry.IsPosted)
	assert.True(t, entry.TotalDebit.Equal(entry.TotalCredit))

	w = f.do(t, http.MethodGet, "/api/v1/stock/"+itemID.String()+"/consistency", tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[handler.ConsistencyResponse](t, w).Data.Consistent)

	w = f.do(t, http.MethodGet, "/api/v1/stock/"+itemID.String()+"/movements?page_size=1", tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	movements := decode[[]appinv.StockMovementResponse](t, w)
	require.Len(t, movements.Data, 1)
	require.NotNil(t, movements.Meta)
	assert.Equal(t, int64(2), movements.Meta.Total)
	assert.Equal(t, 2, movements.Meta.TotalPages)
}

func TestAPI_DeliveryBeyondStockIsRejected(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, _, itemID := f.seedTenant(t, "ACME")

	mustCreate[apptrade.DocumentResponse](t, f, "/api/v1/documents/grn", tenantID, documentBody(itemID, nil, 3, 10))

	w := f.do(t, http.MethodPost, "/api/v1/documents/delivery-note", tenantID, documentBody(itemID, nil, 5, 0))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decode[json.RawMessage](t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeInsufficientStock, env.Error.Code)
	assert.Equal(t, itemID.String(), env.Error.EntityID)
	assert.NotEmpty(t, env.Error.RequestID)

	w = f.do(t, http.MethodGet, "/api/v1/stock/"+itemID.String(), tenantID, nil)
	assert.True(t, decimal.NewFromInt(3).Equal(decode[handler.StockResponse](t, w).Data.Quantity))
}

func TestAPI_ManualJournalLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, _, _ := f.seedTenant(t, "ACME")

	w := f.do(t, http.MethodGet, "/api/v1/accounts", tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]appfinance.AccountResponse](t, w).Data
	require.GreaterOrEqual(t, len(accounts), 2)

	lines := []appfinance.JournalLineInput{
		{AccountID: accounts[0].ID, Debit: decimal.NewFromInt(100)},
		{AccountID: accounts[1].ID, Credit: decimal.NewFromInt(100)},
	}
	entry := mustCreate[appfinance.JournalEntryResponse](t, f, "/api/v1/journal-entries", tenantID,
		appfinance.CreateManualEntryRequest{Description: "opening", Lines: lines})
	assert.False(t, entry.IsPosted)

	base := "/api/v1/journal-entries/" + entry.ID.String()

	w = f.do(t, http.MethodPost, base+"/reverse", tenantID, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeNotPosted, decode[json.RawMessage](t, w).Error.Code)

	w = f.do(t, http.MethodPost, base+"/post", tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[appfinance.JournalEntryResponse](t, w).Data.IsPosted)

	w = f.do(t, http.MethodPost, base+"/post", tenantID, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyPosted, decode[json.RawMessage](t, w).Error.Code)

	w = f.do(t, http.MethodPost, base+"/reverse", tenantID, appfinance.ReverseEntryRequest{Reason: "typo"})
	require.Equal(t, http.StatusCreated, w.Code)
	reversal := decode[handler.ReverseEntryResponse](t, w).Data
	assert.Equal(t, entry.ID, reversal.ReversedEntryID)
	assert.NotEqual(t, uuid.Nil, reversal.ReversalID)

	w = f.do(t, http.MethodPost, base+"/reverse", tenantID, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyReversed, decode[json.RawMessage](t, w).Error.Code)

	w = f.do(t, http.MethodGet, "/api/v1/journal-entries?page=1&page_size=10", tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[[]appfinance.JournalEntryResponse](t, w).Meta.Total)
}

func TestAPI_PaymentIsJournalledAsynchronously(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, _, _ := f.seedTenant(t, "ACME")

	payment := mustCreate[appfinance.PaymentResponse](t, f, "/api/v1/payments", tenantID, appfinance.CreatePaymentRequest{
		Direction: "RECEIVED",
		PartyID:   testutil.NewTestUUID("party"),
		Amount:    decimal.NewFromInt(500),
		Mode:      "CASH",
	})
	assert.Equal(t, "PENDING", payment.JournalStatus)

	f.Drain(t)

	w := f.do(t, http.MethodGet, "/api/v1/payments/"+payment.ID.String(), tenantID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "POSTED", decode[appfinance.PaymentResponse](t, w).Data.JournalStatus)

	w = f.do(t, http.MethodDelete, "/api/v1/payments/"+payment.ID.String(), tenantID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAPI_TenantIsolation(t *testing.T) {
	f := newAPIFixture(t)
	acme, _, itemID := f.seedTenant(t, "ACME")
	other, _, _ := f.seedTenant(t, "OTHER")

	w := f.do(t, http.MethodGet, "/api/v1/items/"+itemID.String(), acme, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/items/"+itemID.String(), other, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode[json.RawMessage](t, w).Error.Code)
}

func TestAPI_RequestErrors(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, _, itemID := f.seedTenant(t, "ACME")

	tests := []struct {
		name   string
		method string
		path   string
		tenant uuid.UUID
		body   any
		status int
		code   string
	}{
		{"missing tenant header", http.MethodGet, "/api/v1/taxes", uuid.Nil, nil, http.StatusBadRequest, dto.ErrCodeTenantHeader},
		{"unknown kind", http.MethodGet, "/api/v1/documents/invoice", tenantID, nil, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed id", http.MethodGet, "/api/v1/documents/sale/abc", tenantID, nil, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"unknown document", http.MethodGet, "/api/v1/documents/sale/" + uuid.NewString(), tenantID, nil, http.StatusNotFound, dto.ErrCodeNotFound},
		{"empty line set", http.MethodPost, "/api/v1/documents/sale", tenantID,
			apptrade.CreateDocumentRequest{PartyID: uuid.New()}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"bad party filter", http.MethodGet, "/api/v1/documents/sale?party_id=x", tenantID, nil, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"adjustment without reason", http.MethodPost, "/api/v1/stock/" + itemID.String() + "/adjustments", tenantID,
			map[string]string{"delta": "5"}, http.StatusBadRequest, dto.ErrCodeValidation},
		{"negative adjustment beyond stock", http.MethodPost, "/api/v1/stock/" + itemID.String() + "/adjustments", tenantID,
			handler.AdjustStockRequest{Delta: decimal.NewFromInt(-1), Reason: "breakage"}, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"unknown outbox entry", http.MethodGet, "/api/v1/admin/outbox/" + uuid.NewString(), uuid.Nil, nil, http.StatusNotFound, dto.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.tenant, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			env := decode[json.RawMessage](t, w)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestAPI_StockAdjustment(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, _, itemID := f.seedTenant(t, "ACME")

	movement := mustCreate[appinv.StockMovementResponse](t, f, fmt.Sprintf("/api/v1/stock/%s/adjustments", itemID), tenantID,
		handler.AdjustStockRequest{Delta: decimal.NewFromInt(7), Reason: "opening count"})
	assert.True(t, decimal.NewFromInt(7).Equal(movement.BalanceAfter))
	assert.Equal(t, "opening count", movement.Reason)
}

func TestAPI_OutboxAdmin(t *testing.T) {
	f := newAPIFixture(t)
	tenantID, taxID, itemID := f.seedTenant(t, "ACME")
	mustCreate[apptrade.DocumentResponse](t, f, "/api/v1/documents/sale", tenantID, documentBody(itemID, &taxID, 1, 100))

	w := f.do(t, http.MethodGet, "/api/v1/admin/outbox/stats", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[map[string]any](t, w).Data
	assert.NotEmpty(t, stats)

	w = f.do(t, http.MethodGet, "/api/v1/admin/outbox/dead", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dead := decode[[]appevent.OutboxEntryResponse](t, w)
	assert.Empty(t, dead.Data)
	assert.Equal(t, int64(0), dead.Meta.Total)

	w = f.do(t, http.MethodPost, "/api/v1/admin/outbox/dead/requeue", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[handler.RequeueAllResponse](t, w).Data.Requeued)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := f.do(t, http.MethodGet, path, uuid.Nil, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		health := decode[handler.HealthResponse](t, w).Data
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "ok", health.Database)
		assert.Equal(t, "test", health.Version)
	}

	w := f.do(t, http.MethodGet, "/metrics", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
