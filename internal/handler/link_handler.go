package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hagegesam/fiverr-share-earn/internal/repository"
	"github.com/hagegesam/fiverr-share-earn/internal/service"
	"go.uber.org/zap"
)

type LinkHandler struct {
	linkService  service.LinkService
	clickService service.ClickService
	fraudChecker service.FraudChecker
	baseURL      string
	logger       *zap.Logger
}

func NewLinkHandler(
	linkService service.LinkService,
	clickService service.ClickService,
	fraudChecker service.FraudChecker,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		linkService:  linkService,
		clickService: clickService,
		fraudChecker: fraudChecker,
		baseURL:      baseURL,
		logger:       logger,
	}
}

type CreateLinkRequest struct {
	TargetURL string `json:"target_url"`
}

type LinkResponse struct {
	ShortCode string    `json:"short_code"`
	ShortURL  string    `json:"short_url"`
	TargetURL string    `json:"target_url"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Create a shareable short link; returns the existing one if the URL was already shortened
// @Tags links
// @Accept json
// @Produce json
// @Param request body CreateLinkRequest true "Link creation request"
// @Success 201 {object} LinkResponse "newly created"
// @Success 200 {object} LinkResponse "already existed"
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_request",
			Message: "Тело запроса должно быть JSON с полем target_url",
		})
		return
	}

	link, isNew, err := h.linkService.CreateOrGetLink(c.Request.Context(), req.TargetURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "invalid_target_url",
				Message: "target_url должен быть непустым и начинаться с http:// или https://",
			})
			return
		}

		h.logger.Error("Failed to create link", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Не удалось создать ссылку",
		})
		return
	}

	response := LinkResponse{
		ShortCode: link.ShortCode,
		ShortURL:  h.baseURL + "/" + link.ShortCode,
		TargetURL: link.TargetURL,
		CreatedAt: link.CreatedAt,
	}

	// 201 для новой ссылки, 200 если URL уже был сокращён
	status := http.StatusCreated
	if !isNew {
		status = http.StatusOK
	}
	c.JSON(status, response)
}

// Redirect godoc
// @Summary Redirect to target URL
// @Description Redirect by short code after the fraud check passes; the click is recorded before redirecting
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 302 {object} nil
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := h.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Короткая ссылка не найдена",
			})
			return
		}

		h.logger.Error("Failed to get link", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Не удалось получить ссылку",
		})
		return
	}

	// Антифрод дожидаемся до записи клика; при отказе клик не пишем
	if err := h.fraudChecker.Check(c.Request.Context(), code); err != nil {
		if errors.Is(err, service.ErrFraudRejected) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "fraud_rejected",
				Message: "Переход не прошёл проверку на фрод",
			})
			return
		}

		h.logger.Error("Fraud check failed", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Проверка перехода не удалась",
		})
		return
	}

	if _, err := h.clickService.Record(c.Request.Context(), link.ID); err != nil {
		h.logger.Error("Failed to record click", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Не удалось записать переход",
		})
		return
	}

	c.Redirect(http.StatusFound, link.TargetURL)
}

// DeleteLink godoc
// @Summary Delete a short link
// @Description Delete a link by short code; its clicks are removed by cascade
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /links/{code} [delete]
func (h *LinkHandler) DeleteLink(c *gin.Context) {
	code := c.Param("code")

	if err := h.linkService.DeleteLink(c.Request.Context(), code); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Короткая ссылка не найдена",
			})
			return
		}

		h.logger.Error("Failed to delete link", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Не удалось удалить ссылку",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}
