package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"trashlink/internal/usecase"
	"trashlink/pkg/response"
	"trashlink/pkg/utils"
)

type RequestHandler struct {
	requestUseCase *usecase.RequestUseCase
}

func NewRequestHandler(requestUseCase *usecase.RequestUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
	}
}

type createRequestRequest struct {
	Category          string     `json:"category" validate:"required"`
	Description       string     `json:"description"`
	Address           string     `json:"address" validate:"required"`
	Lat               float64    `json:"lat" validate:"latitude"`
	Lng               float64    `json:"lng" validate:"longitude"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	EstimatedQuantity string     `json:"estimated_quantity"`
	PhotoURLs         []string   `json:"photo_urls" validate:"max=5"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending matched in_progress completed cancelled"`
}

func (h *RequestHandler) Create(c echo.Context) error {
	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	request, err := h.requestUseCase.Create(c.Request().Context(), userID, usecase.CreateRequestInput{
		Category:          req.Category,
		Description:       req.Description,
		Address:           req.Address,
		Lat:               req.Lat,
		Lng:               req.Lng,
		ScheduledAt:       req.ScheduledAt,
		EstimatedQuantity: req.EstimatedQuantity,
		PhotoURLs:         req.PhotoURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, request)
}

// List returns the caller's view of the request pool: own requests for a
// customer, assigned plus pending for a collector.
func (h *RequestHandler) List(c echo.Context) error {
	userID := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	requests, total, err := h.requestUseCase.List(c.Request().Context(), userID, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessPaginated(c, requests, total, pagination.PageSize, pagination.Offset)
}

func (h *RequestHandler) GetByID(c echo.Context) error {
	requestID := c.Param("id")
	userID := c.Get("uid").(string)

	request, err := h.requestUseCase.GetByID(c.Request().Context(), userID, requestID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

// Accept claims a pending request for the calling collector. A request
// already claimed by someone else comes back as a conflict.
func (h *RequestHandler) Accept(c echo.Context) error {
	requestID := c.Param("id")
	userID := c.Get("uid").(string)

	request, err := h.requestUseCase.Accept(c.Request().Context(), userID, requestID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

func (h *RequestHandler) UpdateStatus(c echo.Context) error {
	requestID := c.Param("id")
	userID := c.Get("uid").(string)

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	request, err := h.requestUseCase.UpdateStatus(c.Request().Context(), userID, requestID, req.Status)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}
