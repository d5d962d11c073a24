package handlers

import (
	"journal-api/helper"
	"journal-api/middleware"
	"journal-api/models"
	"journal-api/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
	Helper      *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, h *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, Helper: h}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	response, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendCreated(c, "Register success", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if models.KindOf(err) == models.KindNotAuthorized {
			h.Helper.SendUnauthorizedError(c, err.Error(), h.Helper.EmptyJsonMap())
			return
		}
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Login success", response)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	actor := middleware.CurrentUser(c)

	user, err := h.authService.GetUserByID(c.Request.Context(), actor.ID)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile loaded", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Profile updated", user)
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	var params models.UserListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.Helper.SendBadRequest(c, "Invalid query", err.Error())
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), middleware.CurrentUser(c), params.Role)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Users loaded", users)
}

// ForgotPassword answers the same way whether or not the email is known.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req); err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "If the email exists, a reset link has been sent.", h.Helper.EmptyJsonMap())
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req); err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}

	h.Helper.SendSuccess(c, "Password updated", h.Helper.EmptyJsonMap())
}
