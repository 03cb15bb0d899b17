package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/infrastructure/realtime"
	msgrouter "go-courier/internal/pkg/chat/application/router"
	"go-courier/internal/pkg/chat/application/usecase"
	chat "go-courier/internal/pkg/chat/domain"
	userport "go-courier/internal/repository/port"
)

const defaultReadTimeout = 60 * time.Second

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Authentication happens on the channel itself, not at upgrade time.
		return true
	},
}

// ChatSocketController is the session gateway: it upgrades connections,
// runs the authenticate-first handshake, dispatches inbound events to the
// message router, and tears the session down on disconnect.
//
// Each connection moves through unauthenticated -> authenticated ->
// closed. Chat events from an unauthenticated connection are rejected
// with an error frame and no side effect.
type ChatSocketController struct {
	verifier *auth.Verifier
	users    userport.UserRepository
	registry *realtime.Registry
	presence *realtime.Tracker
	router   *msgrouter.MessageRouter

	handlers        map[string]func(ctx context.Context, s *session, in realtime.Inbound)
	inflightTimeout time.Duration
	log             *logrus.Entry
}

// session is the per-connection state machine.
type session struct {
	conn          *realtime.Connection
	authenticated bool
}

func NewChatSocketController(
	verifier *auth.Verifier,
	users userport.UserRepository,
	registry *realtime.Registry,
	presence *realtime.Tracker,
	router *msgrouter.MessageRouter,
) *ChatSocketController {
	ctl := &ChatSocketController{
		verifier:        verifier,
		users:           users,
		registry:        registry,
		presence:        presence,
		router:          router,
		inflightTimeout: 5 * time.Second,
		log:             logrus.WithField("component", "session_gateway"),
	}
	// One handler per event kind; authenticate is the only kind legal
	// before the handshake completes.
	ctl.handlers = map[string]func(ctx context.Context, s *session, in realtime.Inbound){
		realtime.EventAuthenticate:  ctl.handleAuthenticate,
		realtime.EventMessage:       ctl.handleMessage,
		realtime.EventReadMessages:  ctl.handleReadMessages,
		realtime.EventTyping:        ctl.handleTyping,
		realtime.EventEditMessage:   ctl.handleEditMessage,
		realtime.EventDeleteMessage: ctl.handleDeleteMessage,
	}
	return ctl
}

// Handle upgrades the HTTP connection and processes frames until the
// client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.log.WithField("error", err).Debug("upgrade failed")
			return
		}

		conn := realtime.NewConnection(ws)
		conn.Start()
		s := &session{conn: conn}

		defer func() {
			// The request context is gone once the socket closes; the
			// disconnect path gets its own deadline for the store writes.
			ctx, cancel := context.WithTimeout(context.Background(), ctl.inflightTimeout)
			defer cancel()
			ctl.presence.Disconnect(ctx, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) &&
					!errors.Is(err, websocket.ErrCloseSent) {
					ctl.log.WithFields(logrus.Fields{"connId": conn.ID, "error": err}).Debug("read loop ended")
				}
				return
			}

			var in realtime.Inbound
			if err := json.Unmarshal(data, &in); err != nil {
				ctl.replyError(conn, "invalid payload")
				continue
			}

			handler, ok := ctl.handlers[in.Type]
			if !ok {
				ctl.replyError(conn, "unknown event type")
				continue
			}
			if !s.authenticated && in.Type != realtime.EventAuthenticate {
				ctl.replyError(conn, "not authenticated")
				continue
			}

			ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
			handler(ctx, s, in)
			cancel()
		}
	}
}

func (ctl *ChatSocketController) handleAuthenticate(ctx context.Context, s *session, in realtime.Inbound) {
	id, err := ctl.verifier.Verify(ctx, in.Token)
	if err != nil {
		ctl.replyError(s.conn, "Authentication failed")
		return
	}

	user, err := ctl.users.FindByID(ctx, id.UserID)
	if err != nil {
		ctl.replyError(s.conn, "Authentication failed")
		return
	}
	if user == nil {
		ctl.replyError(s.conn, "User not found")
		return
	}

	s.conn.BindIdentity(user.ID)
	ctl.presence.Connect(ctx, user.ID, s.conn)
	s.authenticated = true

	ctl.log.WithFields(logrus.Fields{"userId": user.ID, "connId": s.conn.ID}).Info("session authenticated")

	ctl.sendRoster(ctx, s.conn)
}

// sendRoster delivers the full online/offline snapshot to one connection.
// Online flags come from the live registry, which is the primary truth
// for presence; lastSeen comes from the durable record.
func (ctl *ChatSocketController) sendRoster(ctx context.Context, conn *realtime.Connection) {
	all, err := ctl.users.FindAll(ctx)
	if err != nil {
		ctl.replyError(conn, "Failed to load users")
		return
	}

	roster := make([]realtime.UserPayload, 0, len(all))
	for _, u := range all {
		roster = append(roster, realtime.UserPayload{
			ID:       u.ID,
			Name:     u.Name,
			Email:    u.Email,
			IsOnline: ctl.registry.IsOnline(u.ID),
			LastSeen: u.LastSeen,
		})
	}

	payload, err := realtime.Encode(realtime.UsersEvent{Type: realtime.EventUsers, Users: roster})
	if err != nil {
		ctl.log.WithField("error", err).Error("encode users snapshot")
		return
	}
	_ = conn.Send(payload)
}

func (ctl *ChatSocketController) handleMessage(ctx context.Context, s *session, in realtime.Inbound) {
	if _, err := ctl.router.Send(ctx, in.SenderID, in.ReceiverID, in.Content); err != nil {
		ctl.replyEventError(s.conn, err, "Invalid message data", "Failed to send message")
	}
}

func (ctl *ChatSocketController) handleReadMessages(ctx context.Context, s *session, in realtime.Inbound) {
	if _, err := ctl.router.MarkRead(ctx, in.SenderID, in.ReceiverID); err != nil {
		ctl.replyEventError(s.conn, err, "Invalid read receipt data", "Failed to mark messages as read")
	}
}

func (ctl *ChatSocketController) handleTyping(_ context.Context, s *session, in realtime.Inbound) {
	if err := ctl.router.Typing(in.SenderID, in.ReceiverID); err != nil {
		ctl.replyError(s.conn, "Invalid typing data")
	}
}

func (ctl *ChatSocketController) handleEditMessage(ctx context.Context, s *session, in realtime.Inbound) {
	if _, err := ctl.router.Edit(ctx, in.MessageID, in.NewContent, in.UserID); err != nil {
		ctl.replyEventError(s.conn, err, "Invalid edit data", "Failed to edit message")
	}
}

func (ctl *ChatSocketController) handleDeleteMessage(ctx context.Context, s *session, in realtime.Inbound) {
	if err := ctl.router.Delete(ctx, in.MessageID, in.UserID); err != nil {
		ctl.replyEventError(s.conn, err, "Invalid delete data", "Failed to delete message")
	}
}

// replyEventError maps a router failure to an error frame on the
// originating connection only. Other connections never observe it.
func (ctl *ChatSocketController) replyEventError(conn *realtime.Connection, err error, validationMsg, storeMsg string) {
	switch {
	case errors.Is(err, chat.ErrValidation):
		ctl.replyError(conn, validationMsg)
	case errors.Is(err, chat.ErrNotFound):
		ctl.replyError(conn, "Message not found")
	case errors.Is(err, chat.ErrNotOwner):
		ctl.replyError(conn, "You can only modify your own messages")
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, storeMsg)
	default:
		ctl.replyError(conn, storeMsg)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, message string) {
	payload, err := realtime.Encode(realtime.ErrorEvent{Type: realtime.EventError, Message: message})
	if err != nil {
		return
	}
	_ = conn.Send(payload)
}
