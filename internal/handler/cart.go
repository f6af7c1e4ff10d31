package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"storefront-backend/internal/dto"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	buyer := middleware.ResolveBuyer(c, c.QueryParam("clerk_user_id"))

	cart, err := h.cartService.GetCart(ctx, buyer)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	buyer := middleware.ResolveBuyer(c, req.ClerkUserID)

	cart, err := h.cartService.AddItem(ctx, buyer, req.VariantID, req.Quantity)
	if err != nil {
		return cartError(c, err)
	}

	return c.JSON(http.StatusCreated, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	var req dto.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	buyer := middleware.ResolveBuyer(c, c.QueryParam("clerk_user_id"))

	cart, err := h.cartService.UpdateItem(ctx, buyer, uint(itemID), req.Quantity)
	if err != nil {
		return cartError(c, err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	itemID, err := strconv.ParseUint(c.Param("itemID"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	buyer := middleware.ResolveBuyer(c, c.QueryParam("clerk_user_id"))

	if err := h.cartService.RemoveItem(ctx, buyer, uint(itemID)); err != nil {
		return cartError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// CleanCartStock runs the stock reconciliation sweep for a buyer's cart and
// returns what it removed or clamped.
func (h *CartHandler) CleanCartStock(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CleanCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	buyer := middleware.ResolveBuyer(c, req.ClerkUserID)

	report, err := h.cartService.CleanCartStock(ctx, buyer)
	if err != nil {
		if errors.Is(err, service.ErrCartNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Cart not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"removed":  report.Removed,
		"adjusted": report.Adjusted,
		"message":  "Cart cleaned successfully",
	})
}

func cartError(c echo.Context, err error) error {
	var stockErr *service.StockExceededError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "not enough stock available",
			Details: stockErr,
		})
	}
	if errors.Is(err, service.ErrCartNotFound) || errors.Is(err, service.ErrItemNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return err
}
