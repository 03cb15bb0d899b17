package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-courier/internal/infrastructure/auth"
	"go-courier/internal/infrastructure/realtime"
	msgrouter "go-courier/internal/pkg/chat/application/router"
	msgAdapter "go-courier/internal/pkg/chat/persistence/repository/adapter"
	"go-courier/internal/pkg/chat/presentation/controller"
	userAdapter "go-courier/internal/repository/adapter"
)

// Deps bundles the shared infrastructure handed down from main.
type Deps struct {
	Pool     *pgxpool.Pool
	Verifier *auth.Verifier
	Registry *realtime.Registry
	Presence *realtime.Tracker
}

// RegisterRoutes registers all chat-related endpoints under the given
// router group. Per-endpoint controllers are constructed here and bound
// directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	users := userAdapter.NewPgUserRepository(deps.Pool)
	messages := msgAdapter.NewPgMessageRepository(deps.Pool)
	router := msgrouter.NewMessageRouter(messages, deps.Registry)

	authCtl := controller.NewAuthController(users, deps.Verifier)
	userCtl := controller.NewUserController(users, deps.Registry)
	msgCtl := controller.NewMessageController(messages, router)
	actionCtl := controller.NewMessageActionController(messages, router)
	socketCtl := controller.NewChatSocketController(deps.Verifier, users, deps.Registry, deps.Presence, router)

	// Credential issuance; no token required.
	g.POST("/register", authCtl.HandleRegister())
	g.POST("/login", authCtl.HandleLogin())

	// The websocket channel authenticates in-band with its own handshake.
	g.GET("/chat/ws", socketCtl.Handle())

	// Everything else requires a bearer token.
	protected := g.Group("", auth.Middleware(deps.Verifier))
	protected.GET("/users", userCtl.HandleList())
	protected.GET("/users/:userId", userCtl.HandleGet())
	protected.GET("/messages", msgCtl.HandleConversation())
	protected.PATCH("/messages", msgCtl.HandleMarkRead())
	protected.GET("/messages/:messageId", actionCtl.HandleGet())
	protected.PUT("/messages/:messageId", actionCtl.HandleEdit())
	protected.DELETE("/messages/:messageId", actionCtl.HandleDelete())
}
