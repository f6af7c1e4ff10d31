package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-backend/internal/dto"
	"storefront-backend/internal/model"
	"storefront-backend/internal/service"
)

type UserHandler struct {
	profileService service.ProfileService
}

func NewUserHandler(profileService service.ProfileService) *UserHandler {
	return &UserHandler{
		profileService: profileService,
	}
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	externalUserID := c.Param("userID")

	profile, err := h.profileService.GetProfile(ctx, externalUserID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "User profile not found"})
		}
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) SaveProfile(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ClerkUserID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Missing clerk_user_id"})
	}

	profile, err := h.profileService.SaveProfile(ctx, &model.UserProfile{
		ExternalUserID:  req.ClerkUserID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		ShippingAddress: req.ShippingAddress,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}
