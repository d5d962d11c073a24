package handlers

import (
	"journal-api/helper"
	"journal-api/middleware"
	"journal-api/models"
	"journal-api/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService services.NotificationService
	Helper              *helper.HTTPHelper
}

func NewNotificationHandler(notificationService services.NotificationService, h *helper.HTTPHelper) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, Helper: h}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	notifications, err := h.notificationService.GetNotifications(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Notifications loaded", notifications)
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Unread count", gin.H{"count": count})
}

func (h *NotificationHandler) GetAllNotifications(c *gin.Context) {
	notifications, err := h.notificationService.GetAllNotifications(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Notifications loaded", notifications)
}

func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Helper.SendBadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := h.Helper.ValidateStruct(req); err != nil {
		h.Helper.SendInvalidInput(c, err)
		return
	}

	notification, err := h.notificationService.CreateNotification(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendCreated(c, "Notification created", notification)
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid notification ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Notification marked as read", h.Helper.EmptyJsonMap())
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllAsRead(c.Request.Context(), middleware.CurrentUser(c)); err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "All notifications marked as read", h.Helper.EmptyJsonMap())
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		h.Helper.SendBadRequest(c, "Invalid notification ID", h.Helper.EmptyJsonMap())
		return
	}

	if err := h.notificationService.DeleteNotification(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		h.Helper.SendWorkflowError(c, err)
		return
	}
	h.Helper.SendSuccess(c, "Notification removed", h.Helper.EmptyJsonMap())
}
