package alerter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abriesk/psychobotV1/internal/ports/service"
	"github.com/gin-gonic/gin"
)

// Controller принимает внешние алерты (мониторинг, деплой-хуки)
// и пересылает их в алерт-чат команды.
type Controller struct {
	AlerterService service.IAlerterService
	Log            *slog.Logger
}

func New(alerterService service.IAlerterService, log *slog.Logger) *Controller {
	return &Controller{
		AlerterService: alerterService,
		Log:            log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhooks/alert", c.handleGenericAlert)
}

// GenericAlertPayload произвольный алерт от внешней системы
type GenericAlertPayload struct {
	Source   string `json:"source"`
	Severity string `json:"severity"`
	Message  string `json:"message" binding:"required"`
}

func (c *Controller) handleGenericAlert(ctx *gin.Context) {
	var payload GenericAlertPayload

	if err := ctx.ShouldBindJSON(&payload); err != nil {
		c.Log.Warn("failed to bind alert request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Если алертер не настроен, просто логируем и возвращаем 200
	if c.AlerterService == nil {
		c.Log.Info("alerter service not configured, skipping alert",
			"source", payload.Source,
		)
		ctx.JSON(http.StatusOK, gin.H{"ok": true, "message": "alerter not configured"})
		return
	}

	message := payload.Message
	if payload.Source != "" {
		message = fmt.Sprintf("🚨 [%s] %s", payload.Source, payload.Message)
	}

	if err := c.AlerterService.SendAlert(ctx.Request.Context(), message); err != nil {
		c.Log.Warn("failed to send alert",
			"error", err,
			"source", payload.Source,
		)
		// Возвращаем 200, чтобы отправитель не зацикливал ретраи
		ctx.JSON(http.StatusOK, gin.H{"ok": false, "error": "failed to send alert"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
