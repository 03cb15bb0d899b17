package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-courier/internal/infrastructure/realtime"
	userport "go-courier/internal/repository/port"
)

// UserController exposes the user directory. Password hashes never leave
// the repository layer; online flags are overlaid from the live registry.
type UserController struct {
	users    userport.UserRepository
	registry *realtime.Registry
	log      *logrus.Entry
}

func NewUserController(users userport.UserRepository, registry *realtime.Registry) *UserController {
	return &UserController{
		users:    users,
		registry: registry,
		log:      logrus.WithField("component", "user_controller"),
	}
}

// HandleList returns all users, credential fields stripped.
func (ctl *UserController) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := ctl.users.FindAll(c.Request.Context())
		if err != nil {
			ctl.log.WithField("error", err).Error("list users failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}

		out := make([]realtime.UserPayload, 0, len(all))
		for _, u := range all {
			out = append(out, sanitizeUser(u, ctl.registry.IsOnline(u.ID)))
		}
		c.JSON(http.StatusOK, out)
	}
}

// HandleGet returns one user by id, or 404.
func (ctl *UserController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("userId")
		user, err := ctl.users.FindByID(c.Request.Context(), id)
		if err != nil {
			ctl.log.WithFields(logrus.Fields{"userId": id, "error": err}).Error("get user failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusOK, sanitizeUser(*user, ctl.registry.IsOnline(user.ID)))
	}
}
