package proxy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/skedy/escalation-service/internal/channels/whatsapp"
	"github.com/skedy/escalation-service/internal/core/docdb"
)

// InboundMessage is a channel message entering the proxy router.
type InboundMessage struct {
	// SenderPhone is the normalized sender number.
	SenderPhone string
	// Text is the message body.
	Text string
	// ButtonID is the interactive button payload, when present.
	ButtonID string
	// SenderName is the channel profile name, when present.
	SenderName string
}

// RouteResult reports what the router did with a message.
type RouteResult struct {
	// Handled is false when no proxy session applies and normal bot
	// processing should continue.
	Handled bool
	// Forwarded is true when the message was relayed to the other side.
	Forwarded bool
	// ProxyEnded is true when the message ended the takeover.
	ProxyEnded bool
	// Response is text to send back to the sender, when any.
	Response string
}

// Router relays messages between operator and customer while a proxy
// session is live.
type Router struct {
	manager  *Manager
	sessions docdb.SessionsCollection
	sender   whatsapp.Sender
	logger   zerolog.Logger
}

// NewRouter creates a proxy message router.
func NewRouter(manager *Manager, db docdb.Client, sender whatsapp.Sender, logger zerolog.Logger) *Router {
	return &Router{
		manager:  manager,
		sessions: db.Sessions(),
		sender:   sender,
		logger:   logger.With().Str("component", "proxy-router").Logger(),
	}
}

// RouteFromAdmin handles a message sent by an operator. Takeover
// commands end the session; anything else is relayed to the customer.
func (r *Router) RouteFromAdmin(ctx context.Context, msg *InboundMessage) (*RouteResult, error) {
	notification, err := r.manager.ActiveByAdmin(ctx, msg.SenderPhone)
	if err != nil {
		return nil, err
	}

	if IsTakeoverCommand(msg.Text, msg.ButtonID) {
		if notification == nil {
			return &RouteResult{Handled: true, Response: "⚠️ No active proxy session found."}, nil
		}
		if err := r.manager.End(ctx, notification); err != nil {
			return nil, err
		}
		return &RouteResult{Handled: true, ProxyEnded: true, Response: "🔄 Proxy mode ended. Bot has resumed control."}, nil
	}

	if notification == nil {
		return &RouteResult{}, nil
	}

	valid, err := r.manager.Validate(ctx, notification)
	if err != nil {
		return nil, err
	}
	if !valid {
		return &RouteResult{}, nil
	}

	session, err := r.sessions.Get(ctx, notification.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("proxy session references missing chat session %s", notification.SessionID)
	}

	if _, err := r.sender.SendText(ctx, session.CustomerPhone, msg.Text); err != nil {
		r.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to relay operator message")
		return &RouteResult{Handled: true}, nil
	}

	r.logger.Debug().Str("session_id", session.ID).Msg("operator message relayed to customer")
	return &RouteResult{Handled: true, Forwarded: true}, nil
}

// RouteFromCustomer handles a message sent by the customer of a session
// under takeover: it is relayed to the operator instead of the bot.
func (r *Router) RouteFromCustomer(ctx context.Context, sessionID string, msg *InboundMessage) (*RouteResult, error) {
	notification, err := r.manager.ActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return &RouteResult{}, nil
	}

	valid, err := r.manager.Validate(ctx, notification)
	if err != nil {
		return nil, err
	}
	if !valid {
		return &RouteResult{}, nil
	}

	name := msg.SenderName
	if name == "" {
		name = msg.SenderPhone
	}
	forwarded := fmt.Sprintf("👤 %s said: %q", name, msg.Text)

	if _, err := r.sender.SendText(ctx, notification.Proxy.AdminPhone, forwarded); err != nil {
		r.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to relay customer message")
		return &RouteResult{Handled: true}, nil
	}

	r.logger.Debug().Str("session_id", sessionID).Msg("customer message relayed to operator")
	return &RouteResult{Handled: true, Forwarded: true}, nil
}
