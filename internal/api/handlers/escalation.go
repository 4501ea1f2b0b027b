package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/api/dto"
	"github.com/skedy/escalation-service/internal/api/middleware"
	"github.com/skedy/escalation-service/internal/core/docdb"
	"github.com/skedy/escalation-service/internal/domain/errors"
	"github.com/skedy/escalation-service/internal/domain/models"
	"github.com/skedy/escalation-service/internal/services/escalation"
	"github.com/skedy/escalation-service/internal/services/language"
	"github.com/skedy/escalation-service/internal/services/proxy"
)

// EscalationHandler processes inbound conversation messages: proxy
// relaying, language resolution and escalation evaluation.
type EscalationHandler struct {
	docDBClient  docdb.Client
	engine       *escalation.Engine
	languages    *language.Service
	proxyRouter  *proxy.Router
	historyLimit int64
	logger       zerolog.Logger
}

// NewEscalationHandler creates a new EscalationHandler. historyLimit is
// how many recent messages are loaded as escalation context.
func NewEscalationHandler(docDBClient docdb.Client, engine *escalation.Engine, languages *language.Service, proxyRouter *proxy.Router, historyLimit int64, logger zerolog.Logger) *EscalationHandler {
	if historyLimit <= 0 {
		historyLimit = 15
	}
	return &EscalationHandler{
		docDBClient:  docDBClient,
		engine:       engine,
		languages:    languages,
		proxyRouter:  proxyRouter,
		historyLimit: historyLimit,
		logger:       logger.With().Str("component", "escalation-handler").Logger(),
	}
}

// ProcessMessage handles POST /messages/process
//
// Runs a customer message through the full inbound pipeline. Messages for
// sessions under operator takeover are relayed instead of evaluated.
func (h *EscalationHandler) ProcessMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ProcessMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	session, err := h.docDBClient.Sessions().Get(ctx, req.SessionID)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to load session", err))
		return
	}
	if session == nil {
		session = &models.ChatSession{
			ID:            req.SessionID,
			BusinessID:    req.BusinessID,
			CustomerPhone: req.CustomerPhone,
			Mode:          models.ModeBot,
		}
		if err := h.docDBClient.Sessions().Create(ctx, session); err != nil {
			middleware.HandleError(c, errors.NewInternalError("failed to create session", err))
			return
		}
	}

	// A session under takeover relays to the operator and skips the bot
	// pipeline entirely.
	routed, err := h.proxyRouter.RouteFromCustomer(ctx, session.ID, &proxy.InboundMessage{
		SenderPhone: req.CustomerPhone,
		Text:        req.Message,
		ButtonID:    req.ButtonID,
		SenderName:  req.CustomerName,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to route proxied message", err))
		return
	}
	if routed.Handled {
		h.storeMessage(ctx, session.ID, models.RoleCustomer, req.Message, req.CustomerName)
		c.JSON(http.StatusOK, dto.ProcessMessageResponse{
			Language:       session.Language,
			ProxyForwarded: routed.Forwarded,
		})
		return
	}

	// Sticker-only messages carry no text worth classifying; store
	// them and skip the pipeline.
	if escalation.HasStickerContent(req.Message) {
		h.storeMessage(ctx, session.ID, models.RoleCustomer, req.Message, req.CustomerName)
		c.JSON(http.StatusOK, dto.ProcessMessageResponse{
			Language: session.Language,
		})
		return
	}

	resolution := h.languages.Resolve(ctx, req.Message, session.Language, session.CollectingAddress)
	if resolution.WasChanged {
		if err := h.docDBClient.Sessions().UpdateLanguage(ctx, session.ID, resolution.Language); err != nil {
			h.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to persist language")
		}
	}

	history, err := h.docDBClient.Sessions().Messages(ctx, session.ID, h.historyLimit)
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to load history", err))
		return
	}

	result := h.engine.Handle(ctx, req.Message, &models.ConversationContext{
		SessionID:     session.ID,
		BusinessID:    session.BusinessID,
		CustomerPhone: session.CustomerPhone,
		CustomerName:  req.CustomerName,
		Language:      resolution.Language,
		History:       history,
	})

	h.storeMessage(ctx, session.ID, models.RoleCustomer, req.Message, req.CustomerName)
	if result.Escalated && result.Response != "" {
		h.storeMessage(ctx, session.ID, models.RoleBot, result.Response, "")
	}

	c.JSON(http.StatusOK, dto.ProcessMessageResponse{
		Escalated:      result.Escalated,
		Reason:         string(result.Reason),
		Response:       result.Response,
		NotificationID: result.NotificationID,
		Language:       resolution.Language,
	})
}

// AdminMessage handles POST /messages/admin
//
// Routes a message sent from an operator phone: takeover commands end the
// proxy session, anything else is relayed to the customer.
func (h *EscalationHandler) AdminMessage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AdminMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	routed, err := h.proxyRouter.RouteFromAdmin(ctx, &proxy.InboundMessage{
		SenderPhone: req.AdminPhone,
		Text:        req.Message,
		ButtonID:    req.ButtonID,
		SenderName:  req.SenderName,
	})
	if err != nil {
		middleware.HandleError(c, errors.NewInternalError("failed to route admin message", err))
		return
	}

	c.JSON(http.StatusOK, dto.AdminMessageResponse{
		Handled:    routed.Handled,
		Forwarded:  routed.Forwarded,
		ProxyEnded: routed.ProxyEnded,
		Response:   routed.Response,
	})
}

// DebugCheckRequest represents the request body for a dry-run escalation
// check.
type DebugCheckRequest struct {
	Message  string `json:"message" binding:"required,min=1"`
	Language string `json:"language"`
	History  []struct {
		Role    string `json:"role" binding:"required,oneof=customer bot staff"`
		Content string `json:"content"`
	} `json:"history"`
}

// DebugCheck handles POST /debug/escalation-check
//
// Runs the escalation triggers over a posted message and history without
// touching any session or sending any notification.
func (h *EscalationHandler) DebugCheck(c *gin.Context) {
	ctx := c.Request.Context()

	var req DebugCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	history := make([]models.ChatMessage, 0, len(req.History))
	for _, entry := range req.History {
		history = append(history, models.ChatMessage{
			Role:    models.SenderRole(entry.Role),
			Content: entry.Content,
		})
	}

	check := h.engine.Check(ctx, req.Message, &models.ConversationContext{
		Language: req.Language,
		History:  history,
	})

	c.JSON(http.StatusOK, check)
}

// storeMessage appends to the conversation history. Persistence failures
// are logged and swallowed so they never block message processing.
func (h *EscalationHandler) storeMessage(ctx context.Context, sessionID string, role models.SenderRole, content, displayName string) {
	msg := models.NewChatMessage(sessionID, role, content)
	msg.DisplayName = displayName
	if err := h.docDBClient.Sessions().AddMessage(ctx, msg); err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to store message")
	}
}
