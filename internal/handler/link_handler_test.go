package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hagegesam/fiverr-share-earn/internal/handler"
	"github.com/hagegesam/fiverr-share-earn/internal/service"
	"github.com/hagegesam/fiverr-share-earn/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:8080"

// instantFraudChecker пропускает без задержки, чтобы не замедлять тесты
type instantFraudChecker struct{}

func (instantFraudChecker) Check(ctx context.Context, shortCode string) error { return nil }

// rejectingFraudChecker всегда отклоняет переход
type rejectingFraudChecker struct{}

func (rejectingFraudChecker) Check(ctx context.Context, shortCode string) error {
	return service.ErrFraudRejected
}

// setupRouter собирает роутер поверх моковых репозиториев
func setupRouter(t *testing.T, fraud service.FraudChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	linkRepo := mocks.NewMockLinkRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	clickRepo := mocks.NewMockClickRepository()
	logger, _ := zap.NewDevelopment()

	linkService := service.NewLinkService(linkRepo, cacheRepo, logger)
	clickService := service.NewClickService(clickRepo)
	statsService := service.NewStatsService(linkRepo, clickRepo)

	return handler.NewRouter(linkService, clickService, statsService, fraud, testBaseURL, logger)
}

// createLink хелпер: создаёт ссылку через API и возвращает ответ
func createLink(t *testing.T, router *gin.Engine, targetURL string) (int, handler.LinkResponse) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"target_url": targetURL})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp handler.LinkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

// getStats хелпер: запрашивает /stats и декодирует ответ
func getStats(t *testing.T, router *gin.Engine, query string) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/stats"+query, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	return stats
}

// TestCreateLink проверяет создание ссылки: 201 для новой, 200 для повторной
func TestCreateLink(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	status, resp := createLink(t, router, "https://fiverr.com/john/logo-design")
	assert.Equal(t, http.StatusCreated, status)
	assert.Len(t, resp.ShortCode, 6)
	assert.Equal(t, "https://fiverr.com/john/logo-design", resp.TargetURL)
	assert.Equal(t, testBaseURL+"/"+resp.ShortCode, resp.ShortURL)
	assert.False(t, resp.CreatedAt.IsZero())

	// Повторный запрос с тем же URL — 200 и тот же код
	status, second := createLink(t, router, "https://fiverr.com/john/logo-design")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, resp.ShortCode, second.ShortCode)
}

// TestCreateLink_Validation проверяет отклонение плохих запросов со статусом 422
func TestCreateLink_Validation(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	tests := []struct {
		name string
		body string
	}{
		{"пустое тело", `{}`},
		{"пустой target_url", `{"target_url": ""}`},
		{"только пробелы", `{"target_url": "   "}`},
		{"без схемы", `{"target_url": "fiverr.com/x"}`},
		{"не http(s)", `{"target_url": "ftp://fiverr.com/x"}`},
		{"не JSON", `not-json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/links", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var errResp handler.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

// TestRedirect проверяет редирект 302 и запись клика
func TestRedirect(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	target := "https://fiverr.com/test/redirect"
	_, created := createLink(t, router, target)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/"+created.ShortCode, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, target, w.Header().Get("Location"))

	// Клик должен быть записан до ответа
	stats := getStats(t, router, "")
	links := stats["links"].([]interface{})
	require.Len(t, links, 1)
	assert.Equal(t, float64(1), links[0].(map[string]interface{})["total_clicks"])
}

// TestRedirect_NotFound проверяет 404 по неизвестному коду без записи клика
func TestRedirect_NotFound(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/zzzzzz", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestRedirect_FraudRejected проверяет 403 при отказе антифрода: клик не пишется
func TestRedirect_FraudRejected(t *testing.T) {
	router := setupRouter(t, rejectingFraudChecker{})

	_, created := createLink(t, router, "https://fiverr.com/fraud/test")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/"+created.ShortCode, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)

	stats := getStats(t, router, "")
	links := stats["links"].([]interface{})
	require.Len(t, links, 1)
	assert.Equal(t, float64(0), links[0].(map[string]interface{})["total_clicks"])
}

// TestRedirect_ClickCount проверяет, что N переходов дают ровно N кликов
// и соответствующие начисления
func TestRedirect_ClickCount(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	_, created := createLink(t, router, "https://fiverr.com/test/multi")

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/"+created.ShortCode, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusFound, w.Code)
	}

	stats := getStats(t, router, "")
	links := stats["links"].([]interface{})
	require.Len(t, links, 1)

	link := links[0].(map[string]interface{})
	assert.Equal(t, float64(5), link["total_clicks"])
	assert.Equal(t, 0.25, link["total_earnings"])

	breakdown := link["monthly_breakdown"].([]interface{})
	require.Len(t, breakdown, 1)
	month := breakdown[0].(map[string]interface{})
	assert.Regexp(t, `^\d{4}-\d{2}$`, month["month"])
	assert.Equal(t, float64(5), month["clicks"])
}

// TestGetStats_Empty проверяет форму ответа на пустой базе
func TestGetStats_Empty(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	stats := getStats(t, router, "")
	assert.Equal(t, float64(1), stats["page"])
	assert.Equal(t, float64(20), stats["limit"])
	assert.Equal(t, float64(0), stats["total_links"])
	assert.Equal(t, []interface{}{}, stats["links"])
}

// TestGetStats_Pagination проверяет постраничную выдачу через API
func TestGetStats_Pagination(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	for i := 0; i < 5; i++ {
		createLink(t, router, fmt.Sprintf("https://fiverr.com/p%d/svc", i))
	}

	page1 := getStats(t, router, "?page=1&limit=2")
	assert.Equal(t, float64(5), page1["total_links"])
	assert.Len(t, page1["links"].([]interface{}), 2)

	page2 := getStats(t, router, "?page=2&limit=2")
	assert.Len(t, page2["links"].([]interface{}), 2)

	page3 := getStats(t, router, "?page=3&limit=2")
	assert.Len(t, page3["links"].([]interface{}), 1)
}

// TestGetStats_RejectsOutOfRange проверяет, что транспорт отвергает
// значения вне диапазона со статусом 422, не передавая их сервису
func TestGetStats_RejectsOutOfRange(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	queries := []string{
		"?page=0",
		"?page=-1",
		"?page=abc",
		"?limit=0",
		"?limit=101",
		"?limit=abc",
	}

	for _, q := range queries {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/stats"+q, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "запрос %s должен быть отклонён", q)
	}
}

// TestDeleteLink проверяет удаление ссылки и 404 после него
func TestDeleteLink(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	_, created := createLink(t, router, "https://fiverr.com/delete/test")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/links/"+created.ShortCode, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Повторное удаление — 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/links/"+created.ShortCode, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Редирект по удалённому коду — 404
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/"+created.ShortCode, nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestHealthCheck проверяет endpoint здоровья
func TestHealthCheck(t *testing.T) {
	router := setupRouter(t, instantFraudChecker{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "fiverr-share-earn", resp["service"])
}
