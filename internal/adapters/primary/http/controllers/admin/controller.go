package admin

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/abriesk/psychobotV1/internal/domain"
	"github.com/abriesk/psychobotV1/internal/ports/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Controller админский API провайдера: доступность, список заявок,
// действия по заявке. Все операции идут через движок переговоров.
type Controller struct {
	Engine service.INegotiationService
	Token  string
	Log    *slog.Logger
}

func New(engine service.INegotiationService, token string, log *slog.Logger) *Controller {
	return &Controller{
		Engine: engine,
		Token:  token,
		Log:    log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	admin := router.Group("/admin", c.auth)
	{
		admin.GET("/availability", c.getAvailability)
		admin.POST("/availability", c.setAvailability)
		admin.GET("/requests", c.listRequests)
		admin.GET("/requests/:id", c.getRequest)
		admin.POST("/requests/:id/propose", c.proposeTime)
		admin.POST("/requests/:id/accept", c.acceptRequest)
		admin.POST("/requests/:id/reject", c.rejectRequest)
		admin.POST("/settings/prices", c.updatePrices)
	}
}

// auth сверяет X-Admin-Token с настроенным токеном
func (c *Controller) auth(ctx *gin.Context) {
	token := ctx.GetHeader("X-Admin-Token")
	if c.Token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(c.Token)) != 1 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx.Next()
}

// AvailabilityRequest запрос на переключение доступности
type AvailabilityRequest struct {
	On *bool `json:"on" binding:"required"`
}

func (c *Controller) getAvailability(ctx *gin.Context) {
	on, err := c.Engine.Availability(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"on": on})
}

// setAvailability переключает глобальную доступность; включение разбирает лист ожидания
func (c *Controller) setAvailability(ctx *gin.Context) {
	var req AvailabilityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	dequeued, err := c.Engine.ToggleAvailability(ctx.Request.Context(), *req.On)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"on": *req.On, "dequeued": dequeued})
}

func (c *Controller) listRequests(ctx *gin.Context) {
	status := domain.RequestStatus(ctx.Query("status"))
	if status == "" {
		status = domain.StatusNegotiating
	}

	// provider_id опционален: 0 означает настроенного провайдера
	var providerID int64
	if raw := ctx.Query("provider_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider_id"})
			return
		}
		providerID = parsed
	}

	requests, err := c.Engine.ListByProvider(ctx.Request.Context(), providerID, status)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"requests": requests})
}

// getRequest заявка вместе с упорядоченной историей переговоров
func (c *Controller) getRequest(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, events, err := c.Engine.GetRequest(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"request": request,
		"history": events,
	})
}

// ProposeTimeRequest запрос на предложение времени от провайдера
type ProposeTimeRequest struct {
	Time time.Time `json:"time" binding:"required"` // RFC 3339
}

func (c *Controller) proposeTime(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req ProposeTimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	request, err := c.Engine.ProposeTime(ctx.Request.Context(), id, domain.PartyProvider, req.Time.UTC())
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

func (c *Controller) acceptRequest(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := c.Engine.Accept(ctx.Request.Context(), id, domain.PartyProvider)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

func (c *Controller) rejectRequest(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	request, err := c.Engine.Reject(ctx.Request.Context(), id, domain.PartyProvider)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"request": request})
}

// PricesRequest запрос на обновление прайса
type PricesRequest struct {
	Individual string `json:"individual" binding:"required"`
	Couple     string `json:"couple" binding:"required"`
}

func (c *Controller) updatePrices(ctx *gin.Context) {
	var req PricesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := c.Engine.UpdatePrices(ctx.Request.Context(), req.Individual, req.Couple); err != nil {
		c.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// fail маппит ошибки движка в HTTP статусы
func (c *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "request not found"})
	case errors.Is(err, domain.ErrOutOfTurn):
		ctx.JSON(http.StatusConflict, gin.H{"error": "waiting for the other party to respond"})
	case errors.Is(err, domain.ErrInvalidState):
		ctx.JSON(http.StatusConflict, gin.H{"error": "action is not allowed in the current state"})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": "concurrent update, retry"})
	default:
		c.Log.Error("admin request failed",
			"error", err,
			"path", ctx.FullPath(),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
