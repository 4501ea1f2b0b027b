package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skedy/escalation-service/internal/api/dto"
	"github.com/skedy/escalation-service/internal/api/middleware"
	"github.com/skedy/escalation-service/internal/core/docdb"
	"github.com/skedy/escalation-service/internal/domain/errors"
	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/services/proxy"
)

// NotificationsHandler handles notification endpoints.
type NotificationsHandler struct {
	docDBClient  docdb.Client
	proxyManager *proxy.Manager
}

// NewNotificationsHandler creates a new NotificationsHandler.
func NewNotificationsHandler(docDBClient docdb.Client, proxyManager *proxy.Manager) *NotificationsHandler {
	return &NotificationsHandler{
		docDBClient:  docDBClient,
		proxyManager: proxyManager,
	}
}

// ListNotificationsRequest represents the query parameters for listing
// notifications.
type ListNotificationsRequest struct {
	BusinessID string `form:"businessId"`
	SessionID  string `form:"sessionId"`
	Status     string `form:"status"`
	Limit      int64  `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset     int64  `form:"offset" binding:"omitempty,min=0"`
}

// ListNotificationsResponse represents the response for listing
// notifications.
type ListNotificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Limit         int64                  `json:"limit"`
	Offset        int64                  `json:"offset"`
}

// List handles GET /notifications
func (h *NotificationsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid query parameters", err.Error()))
		return
	}
	if req.Limit == 0 {
		req.Limit = 50
	}

	notifications, err := h.docDBClient.Notifications().List(ctx, &docdb.ListNotificationsOptions{
		BusinessID: req.BusinessID,
		SessionID:  req.SessionID,
		Status:     models.NotificationStatus(req.Status),
		Limit:      req.Limit,
		Skip:       req.Offset,
		OrderBy:    docdb.SortOrderDesc,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to list notifications", err))
		return
	}

	c.JSON(http.StatusOK, ListNotificationsResponse{
		Notifications: notifications,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
}

// Get handles GET /notifications/:id
func (h *NotificationsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	notification, err := h.docDBClient.Notifications().Get(ctx, id)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to get notification", err))
		return
	}
	if notification == nil {
		middleware.HandleError(c, errors.NewNotFoundError("notification", id))
		return
	}

	c.JSON(http.StatusOK, notification)
}

// Resolve handles POST /notifications/:id/resolve
//
// An operator closes out a notification with a terminal status. Resolving
// an active takeover with provided_help also ends the proxy session and
// hands the conversation back to the bot.
func (h *NotificationsHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req dto.ResolveNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	status := models.NotificationStatus(req.Status)
	if !models.ValidResolutionStatus(status) {
		middleware.HandleError(c, errors.NewBadRequestError("invalid resolution status", req.Status))
		return
	}

	notification, err := h.docDBClient.Notifications().Get(ctx, id)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to get notification", err))
		return
	}
	if notification == nil {
		middleware.HandleError(c, errors.NewNotFoundError("notification", id))
		return
	}

	if notification.Status == models.StatusProxyMode && status == models.StatusProvidedHelp {
		if err := h.proxyManager.End(ctx, notification); err != nil {
			middleware.HandleError(c, errors.NewInternalError("failed to end proxy session", err))
			return
		}
	} else if err := h.docDBClient.Notifications().UpdateStatus(ctx, id, status); err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to update notification", err))
		return
	}

	notification.Status = status
	c.JSON(http.StatusOK, notification)
}

// StartProxyRequest represents the request body for starting a proxy
// takeover.
type StartProxyRequest struct {
	AdminPhone string `json:"adminPhone" binding:"required"`
}

// StartProxy handles POST /notifications/:id/proxy
//
// An operator takes over the conversation behind a notification. The chat
// session switches to proxy mode and subsequent messages are relayed
// between operator and customer until the operator hands back control.
func (h *NotificationsHandler) StartProxy(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req StartProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	notification, err := h.docDBClient.Notifications().Get(ctx, id)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to get notification", err))
		return
	}
	if notification == nil {
		middleware.HandleError(c, errors.NewNotFoundError("notification", id))
		return
	}
	if notification.Status == models.StatusProxyMode {
		middleware.HandleError(c, errors.NewConflictError("proxy session already active", id))
		return
	}

	if err := h.proxyManager.Start(ctx, notification.ID, notification.SessionID, req.AdminPhone, notification.Delivery.MessageID); err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to start proxy session", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(models.StatusProxyMode)})
}
