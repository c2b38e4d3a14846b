package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hagegesam/fiverr-share-earn/internal/service"
	"go.uber.org/zap"
)

type StatsHandler struct {
	statsService service.StatsService
	logger       *zap.Logger
}

func NewStatsHandler(statsService service.StatsService, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{
		statsService: statsService,
		logger:       logger,
	}
}

// GetStats godoc
// @Summary Global click statistics
// @Description Paginated per-link click totals, earnings and monthly breakdown
// @Tags stats
// @Produce json
// @Param page query int false "Page number (>=1)" default(1)
// @Param limit query int false "Page size (1..100)" default(20)
// @Success 200 {object} models.StatsResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (h *StatsHandler) GetStats(c *gin.Context) {
	// Транспорт отвергает значения вне диапазона сразу, не полагаясь на
	// защитные дефолты сервиса
	page, ok := queryInt(c, "page", 1)
	if !ok || page < 1 {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_page",
			Message: "page должен быть целым числом >= 1",
		})
		return
	}

	limit, ok := queryInt(c, "limit", 20)
	if !ok || limit < 1 || limit > 100 {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_limit",
			Message: "limit должен быть целым числом в диапазоне [1, 100]",
		})
		return
	}

	stats, err := h.statsService.GetStats(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to get stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Не удалось получить статистику",
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// queryInt читает целочисленный query-параметр; второе значение false,
// если параметр задан, но не парсится
func queryInt(c *gin.Context, name string, defaultValue int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
