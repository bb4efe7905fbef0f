package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck は依存先1つ分の疎通確認
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler はヘルスチェックハンドラー
type HealthHandler struct {
	checks []HealthCheck
}

// NewHealthHandler はHealthHandlerを作成する
func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse はヘルスチェックのレスポンス
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check はヘルスチェックを行う
// @Summary ヘルスチェック
// @Description アプリケーションと依存先の健全性を確認する
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	code := http.StatusOK

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for _, hc := range h.checks {
			if err := hc.Check(ctx); err != nil {
				resp.Checks[hc.Name] = err.Error()
				resp.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[hc.Name] = "ok"
		}
	}

	return c.JSON(code, resp)
}
