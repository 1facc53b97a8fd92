package handler

import (
	"github.com/erp/ledger/internal/application/event"
	"github.com/gin-gonic/gin"
)

// OutboxHandler handles outbox administration: inspecting dead letters and
// putting them back on the queue
type OutboxHandler struct {
	BaseHandler
	outboxService *event.OutboxService
}

// NewOutboxHandler creates a new outbox handler
func NewOutboxHandler(outboxService *event.OutboxService) *OutboxHandler {
	return &OutboxHandler{
		outboxService: outboxService,
	}
}

// RequeueAllResponse reports how many dead entries went back to pending
type RequeueAllResponse struct {
	Requeued int64 `json:"requeued"`
}

// GetStats handles GET /admin/outbox/stats
//
// @Summary      Outbox statistics
// @Description  Entry counts per status
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=event.OutboxStatsResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/outbox/stats [get]
func (h *OutboxHandler) GetStats(c *gin.Context) {
	stats, err := h.outboxService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// GetDeadLetterEntries handles GET /admin/outbox/dead
//
// @Summary      List dead outbox entries
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field"
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]event.OutboxEntryResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/outbox/dead [get]
func (h *OutboxHandler) GetDeadLetterEntries(c *gin.Context) {
	query, ok := h.bindQuery(c)
	if !ok {
		return
	}

	result, err := h.outboxService.ListDead(c.Request.Context(), query.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, result)
}

// GetEntry handles GET /admin/outbox/:id
//
// @Summary      Get outbox entry
// @Tags         admin
// @Produce      json
// @Param        id path string true "Outbox entry ID"
// @Success      200 {object} dto.Response{data=event.OutboxEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/outbox/{id} [get]
func (h *OutboxHandler) GetEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.outboxService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryDeadEntry handles POST /admin/outbox/:id/requeue. Only dead
// entries can be requeued.
//
// @Summary      Requeue dead outbox entry
// @Description  Only dead entries can be requeued
// @Tags         admin
// @Produce      json
// @Param        id path string true "Outbox entry ID"
// @Success      200 {object} dto.Response{data=event.OutboxEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/outbox/{id}/requeue [post]
func (h *OutboxHandler) RetryDeadEntry(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	entry, err := h.outboxService.Requeue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// RetryAllDeadEntries handles POST /admin/outbox/dead/requeue
//
// @Summary      Requeue all dead outbox entries
// @Tags         admin
// @Produce      json
// @Success      200 {object} dto.Response{data=RequeueAllResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /admin/outbox/dead/requeue [post]
func (h *OutboxHandler) RetryAllDeadEntries(c *gin.Context) {
	n, err := h.outboxService.RequeueAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RequeueAllResponse{Requeued: n})
}
