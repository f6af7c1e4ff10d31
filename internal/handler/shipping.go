package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-backend/internal/dto"
	"storefront-backend/internal/service"
)

type ShippingHandler struct {
	shippingService service.ShippingService
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shippingService,
	}
}

// PreviewRates quotes carrier rates for an order, optionally overriding the
// parcel dimensions first.
func (h *ShippingHandler) PreviewRates(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req dto.PreviewRatesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	rates, err := h.shippingService.PreviewRates(ctx, uint(orderID), &service.ParcelDims{
		Length: req.ParcelLength,
		Width:  req.ParcelWidth,
		Height: req.ParcelHeight,
		Weight: req.ParcelWeight,
	})
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"rates": rates})
}

func (h *ShippingHandler) GenerateLabel(c echo.Context) error {
	ctx := c.Request().Context()

	orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req dto.GenerateLabelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.shippingService.GenerateLabel(ctx, uint(orderID), req.SelectedRateID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrOrderAlreadyShipped):
			return echo.NewHTTPError(http.StatusConflict, "order already shipped")
		}
		return err
	}

	return c.JSON(http.StatusOK, order)
}
