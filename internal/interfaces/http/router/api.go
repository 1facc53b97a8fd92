package router

import (
	"github.com/erp/ledger/internal/infrastructure/metrics"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles everything the ledger API serves. Nil handlers leave
// their routes unregistered.
type Handlers struct {
	System    *handler.SystemHandler
	Tenants   *handler.TenantHandler
	Items     *handler.ItemHandler
	Taxes     *handler.TaxHandler
	Documents *handler.DocumentHandler
	Stock     *handler.StockHandler
	Accounts  *handler.AccountHandler
	Journal   *handler.JournalEntryHandler
	Payments  *handler.PaymentHandler
	Outbox    *handler.OutboxHandler

	// Gatherer backs GET /metrics when set
	Gatherer prometheus.Gatherer
}

// RegisterAPI mounts the ledger API on engine under /api/v1 and returns the
// router it used. Every group except tenants, admin and health requires the
// X-Tenant-ID header.
func RegisterAPI(engine *gin.Engine, h Handlers, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	tenantScoped := middleware.RequireTenant()

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		r.Register(NewDomainGroup("system", "").GET("/health", h.System.Health))
	}
	if h.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler(h.Gatherer)))
	}
	if r.swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if h.Tenants != nil {
		r.Register(NewDomainGroup("identity", "/tenants").
			POST("", h.Tenants.Create).
			GET("/:id", h.Tenants.Get).
			PUT("/:id/settings", h.Tenants.UpdateSettings))
	}

	if h.Items != nil {
		r.Register(NewDomainGroup("catalog", "/items").Use(tenantScoped).
			POST("", h.Items.Create).
			GET("/:id", h.Items.Get).
			DELETE("/:id", h.Items.Delete))
	}

	if h.Taxes != nil {
		r.Register(NewDomainGroup("tax", "/taxes").Use(tenantScoped).
			POST("", h.Taxes.Create).
			GET("", h.Taxes.List).
			DELETE("/:id", h.Taxes.Deactivate))
	}

	if h.Documents != nil {
		r.Register(NewDomainGroup("trade", "/documents").Use(tenantScoped).
			POST("/:kind", h.Documents.Create).
			GET("/:kind", h.Documents.List).
			GET("/:kind/:id", h.Documents.Get).
			PUT("/:kind/:id", h.Documents.Update).
			DELETE("/:kind/:id", h.Documents.Delete))
	}

	if h.Stock != nil {
		r.Register(NewDomainGroup("inventory", "/stock").Use(tenantScoped).
			GET("/:itemId", h.Stock.Get).
			POST("/:itemId/adjustments", h.Stock.Adjust).
			GET("/:itemId/movements", h.Stock.Movements).
			GET("/:itemId/consistency", h.Stock.Verify))
	}

	if h.Accounts != nil {
		r.Register(NewDomainGroup("accounts", "/accounts").Use(tenantScoped).
			POST("/seed", h.Accounts.Seed).
			GET("", h.Accounts.List).
			DELETE("/:id", h.Accounts.Delete))
	}

	if h.Journal != nil {
		r.Register(NewDomainGroup("journal", "/journal-entries").Use(tenantScoped).
			POST("", h.Journal.Create).
			GET("", h.Journal.List).
			GET("/:id", h.Journal.Get).
			POST("/:id/post", h.Journal.Post).
			POST("/:id/reverse", h.Journal.Reverse))
	}

	if h.Payments != nil {
		r.Register(NewDomainGroup("payments", "/payments").Use(tenantScoped).
			POST("", h.Payments.Create).
			GET("/:id", h.Payments.Get).
			DELETE("/:id", h.Payments.Delete))
	}

	if h.Outbox != nil {
		admin := NewDomainGroup("admin", "/admin")
		admin.Group("outbox", "/outbox").
			GET("/stats", h.Outbox.GetStats).
			GET("/dead", h.Outbox.GetDeadLetterEntries).
			POST("/dead/requeue", h.Outbox.RetryAllDeadEntries).
			GET("/:id", h.Outbox.GetEntry).
			POST("/:id/requeue", h.Outbox.RetryDeadEntry)
		r.Register(admin)
	}

	r.Setup()
	return r
}
