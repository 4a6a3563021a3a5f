package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"trashlink/internal/domain/entity"
	"trashlink/internal/usecase"
	"trashlink/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	DisplayName string          `json:"display_name"`
	Phone       string          `json:"phone" validate:"omitempty,e164"`
	Address     *entity.Address `json:"address,omitempty"`
}

type sendCodeRequest struct {
	Phone string `json:"phone" validate:"required,e164"`
}

type verifyCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), userID, usecase.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Address:     req.Address,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// SendPhoneCode kicks off phone verification through the SMS function.
func (h *UserHandler) SendPhoneCode(c echo.Context) error {
	var req sendCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	if err := h.userUseCase.SendPhoneCode(c.Request().Context(), userID, req.Phone); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusAccepted)
}

func (h *UserHandler) VerifyPhoneCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.userUseCase.VerifyPhoneCode(c.Request().Context(), userID, req.Code)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
