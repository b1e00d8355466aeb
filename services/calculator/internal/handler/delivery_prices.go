package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"example.com/price-calculator/pkg/logger"
	"example.com/price-calculator/services/calculator/internal/domain"
	"example.com/price-calculator/services/calculator/internal/usecase"
)

// DeliveryPriceHandler — обработчик /v1/delivery-prices.
type DeliveryPriceHandler struct {
	calculate       Calculator
	getHistory      HistoryReader
	getCalculations CalculationsReader
	clearHistory    HistoryCleaner
}

func NewDeliveryPriceHandler(
	calculate Calculator,
	getHistory HistoryReader,
	getCalculations CalculationsReader,
	clearHistory HistoryCleaner,
) *DeliveryPriceHandler {
	return &DeliveryPriceHandler{
		calculate:       calculate,
		getHistory:      getHistory,
		getCalculations: getCalculations,
		clearHistory:    clearHistory,
	}
}

// === Request/Response DTOs ===

// GoodRequest — габариты и вес товара.
type GoodRequest struct {
	Height float64 `json:"height" binding:"gt=0"`
	Length float64 `json:"length" binding:"gt=0"`
	Width  float64 `json:"width" binding:"gt=0"`
	Weight float64 `json:"weight" binding:"gt=0"`
}

type CalculateRequest struct {
	UserID int64         `json:"user_id" binding:"gt=0"`
	Goods  []GoodRequest `json:"goods" binding:"required,min=1,dive"`
}

type CalculateResponse struct {
	CalculationID int64   `json:"calculation_id"`
	Price         float64 `json:"price"`
}

type GetHistoryRequest struct {
	UserID int64 `json:"user_id" binding:"gt=0"`
	Take   int   `json:"take" binding:"min=1,max=1000"`
	Skip   int   `json:"skip" binding:"min=0"`
}

// CargoResponse — суммарные объём и вес расчёта.
type CargoResponse struct {
	Volume  float64 `json:"volume"`
	Weight  float64 `json:"weight"`
	GoodIDs []int64 `json:"good_ids"`
}

type HistoryItemResponse struct {
	Cargo CargoResponse `json:"cargo"`
	Price float64       `json:"price"`
}

type ClearHistoryRequest struct {
	UserID         int64   `json:"user_id" binding:"gt=0"`
	CalculationIDs []int64 `json:"calculation_ids" binding:"dive,gt=0"`
}

type GetCalculationsRequest struct {
	UserID         int64   `json:"user_id" binding:"gt=0"`
	CalculationIDs []int64 `json:"calculation_ids" binding:"dive,gt=0"`
}

type CalculationResponse struct {
	CalculationID int64   `json:"calculation_id"`
	GoodIDs       []int64 `json:"good_ids"`
	TotalVolume   float64 `json:"total_volume"`
	TotalWeight   float64 `json:"total_weight"`
	Price         float64 `json:"price"`
}

type GetCalculationsResponse struct {
	Calculations []CalculationResponse `json:"calculations"`
}

// === Handlers ===

// Calculate считает и сохраняет стоимость доставки.
// POST /v1/delivery-prices/calculate
func (h *DeliveryPriceHandler) Calculate(c *gin.Context) {
	ctx := c.Request.Context()

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, "Calculate")
		return
	}

	goods := make([]domain.Good, len(req.Goods))
	for i, g := range req.Goods {
		goods[i] = domain.Good{Height: g.Height, Length: g.Length, Width: g.Width, Weight: g.Weight}
	}

	result, err := h.calculate.Handle(ctx, usecase.CalculateCommand{UserID: req.UserID, Goods: goods})
	if err != nil {
		HandleError(c, err, "Calculate")
		return
	}

	logger.Ctx(ctx).Debug().
		Int64("calculation_id", result.CalculationID).
		Str("price", result.Price.String()).
		Msg("Стоимость доставки рассчитана")

	c.JSON(http.StatusOK, CalculateResponse{
		CalculationID: result.CalculationID,
		Price:         toFloat(result.Price),
	})
}

// GetHistory возвращает историю расчётов, новые первыми.
// POST /v1/delivery-prices/get-history
func (h *DeliveryPriceHandler) GetHistory(c *gin.Context) {
	var req GetHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, "GetHistory")
		return
	}

	result, err := h.getHistory.Handle(c.Request.Context(), usecase.GetHistoryQuery{
		UserID: req.UserID,
		Take:   req.Take,
		Skip:   req.Skip,
	})
	if err != nil {
		HandleError(c, err, "GetHistory")
		return
	}

	items := make([]HistoryItemResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = HistoryItemResponse{
			Cargo: CargoResponse{
				Volume:  item.Volume,
				Weight:  item.Weight,
				GoodIDs: nonNil(item.GoodIDs),
			},
			Price: toFloat(item.Price),
		}
	}

	c.JSON(http.StatusOK, items)
}

// ClearHistory удаляет выбранные расчёты или всю историю.
// POST /v1/delivery-prices/clear-history
func (h *DeliveryPriceHandler) ClearHistory(c *gin.Context) {
	var req ClearHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, "ClearHistory")
		return
	}

	err := h.clearHistory.Handle(c.Request.Context(), usecase.ClearHistoryCommand{
		UserID:         req.UserID,
		CalculationIDs: req.CalculationIDs,
	})
	if err != nil {
		HandleError(c, err, "ClearHistory")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

// GetCalculations возвращает расчёты по id.
// Если хотя бы один id чужой или не найден, список пуст.
// POST /v1/delivery-prices/get-calculations
func (h *DeliveryPriceHandler) GetCalculations(c *gin.Context) {
	var req GetCalculationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err, "GetCalculations")
		return
	}

	result, err := h.getCalculations.Handle(c.Request.Context(), usecase.GetCalculationsQuery{
		UserID:         req.UserID,
		CalculationIDs: req.CalculationIDs,
	})
	if err != nil {
		HandleError(c, err, "GetCalculations")
		return
	}

	calcs := make([]CalculationResponse, len(result.Calculations))
	for i, v := range result.Calculations {
		calcs[i] = CalculationResponse{
			CalculationID: v.ID,
			GoodIDs:       nonNil(v.GoodIDs),
			TotalVolume:   v.TotalVolume,
			TotalWeight:   v.TotalWeight,
			Price:         toFloat(v.Price),
		}
	}

	c.JSON(http.StatusOK, GetCalculationsResponse{Calculations: calcs})
}

// toFloat отдаёт цену числом, а не строкой.
func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
