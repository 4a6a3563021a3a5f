package handler

import (
	"github.com/labstack/echo/v4"

	"trashlink/internal/usecase"
	"trashlink/pkg/response"
)

type AuthHandler struct {
	authUseCase *usecase.AuthUseCase
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
	}
}

type beginSignInRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=customer collector"`
}

type completeSignInRequest struct {
	IDToken string `json:"id_token" validate:"required"`
	State   string `json:"state"`
}

type switchRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=customer collector"`
}

// BeginSignIn hands the client a signed state token carrying its role choice.
// The client passes the token through the identity-provider redirect and
// returns it to CompleteSignIn.
func (h *AuthHandler) BeginSignIn(c echo.Context) error {
	var req beginSignInRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	state, err := h.authUseCase.BeginSignIn(req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"state": state})
}

// CompleteSignIn verifies the provider's ID token, resolves the caller's role
// and ensures the account record exists.
func (h *AuthHandler) CompleteSignIn(c echo.Context) error {
	var req completeSignInRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.authUseCase.CompleteSignIn(c.Request().Context(), req.IDToken, req.State)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// Me returns the caller's account record, possibly a synthesized fallback
// when the record store is degraded.
func (h *AuthHandler) Me(c echo.Context) error {
	userID := c.Get("uid").(string)

	user, err := h.authUseCase.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

// SwitchRole flips the caller between the customer and collector sides.
func (h *AuthHandler) SwitchRole(c echo.Context) error {
	var req switchRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	user, err := h.authUseCase.SwitchRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}
