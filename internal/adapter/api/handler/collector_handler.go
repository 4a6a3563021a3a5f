package handler

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/usecase"
	"trashlink/pkg/response"
	"trashlink/pkg/utils"
)

type CollectorHandler struct {
	collectorUseCase *usecase.CollectorUseCase
}

func NewCollectorHandler(collectorUseCase *usecase.CollectorUseCase) *CollectorHandler {
	return &CollectorHandler{
		collectorUseCase: collectorUseCase,
	}
}

type collectorProfileRequest struct {
	Specializations []string `json:"specializations"`
	ServiceRadius   float64  `json:"service_radius" validate:"gte=0"`
	Available       bool     `json:"available"`
}

type availabilityRequest struct {
	Available bool `json:"available"`
}

type locationRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

func (h *CollectorHandler) Onboard(c echo.Context) error {
	var req collectorProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	profile, err := h.collectorUseCase.Onboard(c.Request().Context(), userID, usecase.CollectorProfileInput{
		Specializations: req.Specializations,
		ServiceRadius:   req.ServiceRadius,
		Available:       req.Available,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

func (h *CollectorHandler) GetMyProfile(c echo.Context) error {
	userID := c.Get("uid").(string)

	profile, err := h.collectorUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *CollectorHandler) UpdateProfile(c echo.Context) error {
	var req collectorProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	profile, err := h.collectorUseCase.UpdateProfile(c.Request().Context(), userID, usecase.CollectorProfileInput{
		Specializations: req.Specializations,
		ServiceRadius:   req.ServiceRadius,
		Available:       req.Available,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *CollectorHandler) SetAvailability(c echo.Context) error {
	var req availabilityRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	profile, err := h.collectorUseCase.SetAvailability(c.Request().Context(), userID, req.Available)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *CollectorHandler) UpdateLocation(c echo.Context) error {
	var req locationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.collectorUseCase.UpdateLocation(c.Request().Context(), userID, req.Lat, req.Lng); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Location updated"})
}

// ListAvailable lets a customer browse collectors currently on duty.
func (h *CollectorHandler) ListAvailable(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	profiles, total, err := h.collectorUseCase.ListAvailable(c.Request().Context(), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, profiles, total, pagination.PageSize, pagination.Offset)
}
