package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/infrastructure/realtime"
	userport "go-courier/internal/repository/port"
)

// AuthController issues credentials: register creates an account, login
// exchanges email+password for a bearer token. Presence is deliberately
// not touched here; a user only counts as online once their live
// connection authenticates.
type AuthController struct {
	users    userport.UserRepository
	verifier *auth.Verifier
	log      *logrus.Entry
}

func NewAuthController(users userport.UserRepository, verifier *auth.Verifier) *AuthController {
	return &AuthController{
		users:    users,
		verifier: verifier,
		log:      logrus.WithField("component", "auth_controller"),
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  realtime.UserPayload `json:"user"`
	Token string               `json:"token"`
}

// HandleRegister creates a new account and returns a token for it.
func (ctl *AuthController) HandleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.TrimSpace(req.Email)
		if req.Name == "" || req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Name, email, and password are required"})
			return
		}

		ctx := c.Request.Context()

		existing, err := ctl.users.FindByEmail(ctx, req.Email)
		if err != nil {
			ctl.fail(c, err)
			return
		}
		if existing != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			ctl.fail(c, err)
			return
		}

		id, err := ctl.users.Create(ctx, userport.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
		})
		if err != nil {
			ctl.fail(c, err)
			return
		}

		token, err := ctl.verifier.Issue(id, req.Email)
		if err != nil {
			ctl.fail(c, err)
			return
		}

		c.JSON(http.StatusCreated, authResponse{
			User:  realtime.UserPayload{ID: id, Name: req.Name, Email: req.Email},
			Token: token,
		})
	}
}

// HandleLogin verifies credentials and returns a token. Invalid email and
// invalid password are indistinguishable to the caller.
func (ctl *AuthController) HandleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
			return
		}
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
			return
		}

		user, err := ctl.users.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
		if err != nil {
			ctl.fail(c, err)
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
			return
		}

		token, err := ctl.verifier.Issue(user.ID, user.Email)
		if err != nil {
			ctl.fail(c, err)
			return
		}

		c.JSON(http.StatusOK, authResponse{
			User:  sanitizeUser(*user, user.IsOnline),
			Token: token,
		})
	}
}

func (ctl *AuthController) fail(c *gin.Context, err error) {
	ctl.log.WithField("error", err).Error("auth request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
}

// sanitizeUser strips credential fields for wire exposure.
func sanitizeUser(u userport.User, online bool) realtime.UserPayload {
	return realtime.UserPayload{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		IsOnline: online,
		LastSeen: u.LastSeen,
	}
}
