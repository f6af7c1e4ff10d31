package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-backend/internal/dto"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

// CreateSession validates the requested lines against current stock and
// returns the external payment page URL. One short line aborts the whole
// request with every deficiency itemized.
func (h *CheckoutHandler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no items to check out")
	}

	buyer := middleware.ResolveBuyer(c, req.ClerkUserID)

	lines := make([]service.CheckoutLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.CheckoutLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		}
	}

	resp, err := h.checkoutService.CreateSession(ctx, &service.CheckoutRequest{
		Buyer:           buyer,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ShippingAddress: req.ShippingAddress,
		Lines:           lines,
	})
	if err != nil {
		var outOfStock *service.OutOfStockError
		if errors.As(err, &outOfStock) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "items are out of stock",
				Details: outOfStock.Items,
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, dto.CheckoutResponse{CheckoutURL: resp.CheckoutURL})
}
