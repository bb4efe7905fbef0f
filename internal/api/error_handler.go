package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
// 業務ルール違反と衝突は既存クライアントとの互換のため 500 で返す
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
		details string
		ve      *reservation.ValidationError
		he      *echo.HTTPError
	)

	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	case errors.As(err, &ve):
		message = ve.Message
		details = string(ve.Kind)
	case errors.Is(err, reservation.ErrDateRangeUnavailable):
		message = err.Error()
		details = "conflict"
	case errors.Is(err, application.ErrInventoryBusy):
		message = err.Error()
		details = "inventory_busy"
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Error: message, Code: code, Details: details})
	}
	if err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
