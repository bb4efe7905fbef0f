package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
)

// 受け付ける日付形式
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

// Register は /reservation 配下のルートを登録する
func (h *ReservationHandler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.PUT("", h.Update)
	g.DELETE("/cancel/:id", h.Cancel)
	g.GET("/check-availability", h.CheckAvailability)
	g.GET("/idcard/:idCard", h.GetByIDCard)
	g.GET("/:id", h.GetByID)
}

// ReservationRequest は作成・更新リクエスト
// 文字数の上限下限は reservation パッケージの定数と一致させる
type ReservationRequest struct {
	ID        string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name      string `json:"name" validate:"required,min=3,max=100" example:"山田太郎"`
	IDCard    string `json:"idCard" validate:"required,min=1,max=20" example:"AB1234567"`
	StartDate string `json:"startDate" validate:"required" example:"2026-10-20"`
	EndDate   string `json:"endDate" validate:"required" example:"2026-10-22"`
}

type ReservationResponse struct {
	ID          string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name        string    `json:"name" example:"山田太郎"`
	IDCard      string    `json:"idCard" example:"AB1234567"`
	BookingDate time.Time `json:"bookingDate"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, Name: r.Name, IDCard: r.IDCard,
		BookingDate: r.BookingDate, StartDate: r.StartDate, EndDate: r.EndDate,
	}
}

// Create godoc
// @Summary 予約を作成
// @Description 空き状況を確認して予約を作成します
// @Tags reservation
// @Accept json
// @Param request body ReservationRequest true "予約情報"
// @Success 204
// @Failure 400 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse "検証エラー・期間の衝突を含む"
// @Router /reservation [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	input, err := bindReservationInput(c)
	if err != nil {
		return err
	}
	if err := h.service.CreateReservation(c.Request().Context(), input); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Update godoc
// @Summary 予約を更新
// @Description 日付が変わる場合のみ空き状況を再確認します
// @Tags reservation
// @Accept json
// @Produce json
// @Param request body ReservationRequest true "予約情報（idは必須）"
// @Success 200 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /reservation [put]
func (h *ReservationHandler) Update(c echo.Context) error {
	input, err := bindReservationInput(c)
	if err != nil {
		return err
	}
	result, err := h.service.UpdateReservation(c.Request().Context(), input)
	if err != nil {
		return err
	}
	if !result.Found {
		return echo.NewHTTPError(http.StatusNotFound, reservation.ErrReservationNotFound.Error())
	}
	return c.JSON(http.StatusOK, toReservationResponse(result.Value))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 開始前の予約を削除します
// @Tags reservation
// @Param id path string true "予約ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Failure 500 {object} api.ErrorResponse
// @Router /reservation/cancel/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	result, err := h.service.CancelReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !result.Found {
		return echo.NewHTTPError(http.StatusNotFound, reservation.ErrReservationNotFound.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// GetByID godoc
// @Summary 予約を取得
// @Tags reservation
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservation/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	result, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !result.Found {
		return echo.NewHTTPError(http.StatusNotFound, reservation.ErrReservationNotFound.Error())
	}
	return c.JSON(http.StatusOK, toReservationResponse(result.Value))
}

// GetByIDCard godoc
// @Summary 身分証番号で予約一覧を取得
// @Tags reservation
// @Produce json
// @Param idCard path string true "身分証番号"
// @Success 200 {array} ReservationResponse
// @Failure 404 {object} api.ErrorResponse "該当なし"
// @Router /reservation/idcard/{idCard} [get]
func (h *ReservationHandler) GetByIDCard(c echo.Context) error {
	list, err := h.service.GetReservationsByIDCard(c.Request().Context(), c.Param("idCard"))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, reservation.ErrReservationNotFound.Error())
	}
	resp := make([]ReservationResponse, len(list))
	for i, r := range list {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckAvailability godoc
// @Summary 空き状況を確認
// @Tags reservation
// @Produce json
// @Param startDate query string true "開始日" format(date)
// @Param endDate query string true "終了日" format(date)
// @Success 200 {boolean} bool
// @Failure 400 {object} api.ErrorResponse "日付の形式が不正"
// @Failure 500 {object} api.ErrorResponse "検証エラー"
// @Router /reservation/check-availability [get]
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	startDate, err := parseDate(c.QueryParam("startDate"))
	if err != nil {
		return err
	}
	endDate, err := parseDate(c.QueryParam("endDate"))
	if err != nil {
		return err
	}
	available, err := h.service.CheckAvailability(c.Request().Context(), startDate, endDate)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, available)
}

func bindReservationInput(c echo.Context) (application.ReservationInput, error) {
	var req ReservationRequest
	if err := c.Bind(&req); err != nil {
		return application.ReservationInput{}, echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return application.ReservationInput{}, err
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return application.ReservationInput{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return application.ReservationInput{}, err
	}
	return application.ReservationInput{
		ID: req.ID, Name: req.Name, IDCard: req.IDCard,
		StartDate: startDate, EndDate: endDate,
	}, nil
}

// parseDate は日付文字列を解析する。空文字はゼロ値として返し、必須チェックはドメインに任せる
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "日付の形式が不正です: "+s)
}
