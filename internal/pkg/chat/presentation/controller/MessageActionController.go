package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	msgrouter "go-courier/internal/pkg/chat/application/router"
	repository "go-courier/internal/pkg/chat/persistence/repository/port"
)

// MessageActionController serves GET/PUT/DELETE on a single message.
// Edit and delete delegate to the message router, which is the only
// persist-and-notify authority: the REST path never broadcasts on its
// own, so live peers see exactly one event per mutation.
type MessageActionController struct {
	repo   repository.MessageRepository
	router *msgrouter.MessageRouter
	log    *logrus.Entry
}

func NewMessageActionController(repo repository.MessageRepository, router *msgrouter.MessageRouter) *MessageActionController {
	return &MessageActionController{
		repo:   repo,
		router: router,
		log:    logrus.WithField("component", "message_action_controller"),
	}
}

type editRequest struct {
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

type deleteRequest struct {
	UserID string `json:"userId"`
}

// HandleGet returns one message by id.
func (ctl *MessageActionController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("messageId")
		msg, err := ctl.repo.FindByID(c.Request.Context(), id)
		if err != nil {
			ctl.log.WithFields(logrus.Fields{"messageId": id, "error": err}).Error("get message failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		if msg == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Message not found"})
			return
		}
		c.JSON(http.StatusOK, toMessagePayload(*msg))
	}
}

// HandleEdit rewrites a message's content and returns the updated record.
func (ctl *MessageActionController) HandleEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req editRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		msg, err := ctl.router.Edit(c.Request.Context(), c.Param("messageId"), req.Content, req.UserID)
		if err != nil {
			replyHTTPError(c, ctl.log, err)
			return
		}
		c.JSON(http.StatusOK, toMessagePayload(*msg))
	}
}

// HandleDelete hard-deletes a message.
func (ctl *MessageActionController) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}

		if err := ctl.router.Delete(c.Request.Context(), c.Param("messageId"), req.UserID); err != nil {
			replyHTTPError(c, ctl.log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
	}
}
