package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-courier/internal/infrastructure/realtime"
	msgrouter "go-courier/internal/pkg/chat/application/router"
	"go-courier/internal/pkg/chat/application/usecase"
	chat "go-courier/internal/pkg/chat/domain"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// MessageController serves conversation history and the REST mark-read
// entry point. Mark-read delegates to the message router so the live
// messages_read receipt still fires; history is a plain read.
type MessageController struct {
	getConversationUC *usecase.GetConversationUseCase
	router            *msgrouter.MessageRouter
	log               *logrus.Entry
}

func NewMessageController(repo repository.MessageRepository, router *msgrouter.MessageRouter) *MessageController {
	return &MessageController{
		getConversationUC: usecase.NewGetConversationUseCase(repo),
		router:            router,
		log:               logrus.WithField("component", "message_controller"),
	}
}

type markReadRequest struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// HandleConversation returns all messages between two users, both
// directions, timestamp ascending.
func (ctl *MessageController) HandleConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		senderID := c.Query("senderId")
		receiverID := c.Query("receiverId")
		if senderID == "" || receiverID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "senderId and receiverId are required"})
			return
		}

		msgs, err := ctl.getConversationUC.Execute(c.Request.Context(), usecase.GetConversationInput{
			UserA: senderID,
			UserB: receiverID,
		})
		if err != nil {
			ctl.replyHTTPError(c, err)
			return
		}

		out := make([]realtime.MessagePayload, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, toMessagePayload(m))
		}
		c.JSON(http.StatusOK, out)
	}
}

// HandleMarkRead flips unread messages between the two users to read.
func (ctl *MessageController) HandleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		count, err := ctl.router.MarkRead(c.Request.Context(), req.SenderID, req.ReceiverID)
		if err != nil {
			ctl.replyHTTPError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"modifiedCount": count})
	}
}

func (ctl *MessageController) replyHTTPError(c *gin.Context, err error) {
	replyHTTPError(c, ctl.log, err)
}

// replyHTTPError maps the domain error taxonomy onto HTTP statuses.
func replyHTTPError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, chat.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, chat.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
	case errors.Is(err, chat.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"message": "You can only modify your own messages"})
	case errors.Is(err, usecase.ErrPersistence):
		log.WithField("error", err).Error("persistence failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	default:
		log.WithField("error", err).Error("unexpected failure")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}

func toMessagePayload(m chat.Message) realtime.MessagePayload {
	return realtime.MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.Timestamp,
		Read:       m.Read,
		IsEdited:   m.IsEdited,
		UpdatedAt:  m.UpdatedAt,
	}
}
