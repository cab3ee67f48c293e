package web

import (
	"log/slog"
	"net/http"

	"chathub/auth"
	"chathub/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handlers bundles the services behind the HTTP and websocket surface.
type Handlers struct {
	log            *slog.Logger
	authService    services.IAuthService
	chatService    services.IChatService
	channelService services.IChannelService
	presence       services.IPresenceService
	sinkBufferSize int
}

func NewHandlers(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, channelService services.IChannelService,
	presence services.IPresenceService, sinkBufferSize int) *Handlers {
	return &Handlers{
		log:            log,
		authService:    authService,
		chatService:    chatService,
		channelService: channelService,
		presence:       presence,
		sinkBufferSize: sinkBufferSize,
	}
}

// NewRouter builds the full route table. REST routes other than
// register/login sit behind the JWT middleware; the websocket endpoint
// does its own verification because browsers cannot set headers on a
// websocket dial.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", h.Register)
	authRoutes.POST("/login", h.Login)
	authRoutes.GET("/me", auth.Middleware(), h.Me)

	channels := api.Group("/channels", auth.Middleware())
	channels.POST("/create", h.CreateChannel)
	channels.GET("", h.ListChannels)
	channels.POST("/join", h.JoinChannel)
	channels.POST("/leave", h.LeaveChannel)
	channels.GET("/:channelId/members", h.ChannelMembers)
	channels.PUT("/update/:channelId", h.RenameChannel)
	channels.DELETE("/delete/:channelId", h.DeleteChannel)

	api.GET("/messages/:channelId", auth.Middleware(), h.GetMessages)
	api.GET("/presence", auth.Middleware(), h.GetRoster)

	router.GET("/ws", h.HandleWS)

	return router
}

// HandleWS upgrades the connection and runs the session to completion.
// The credential token travels in the query string (or Authorization
// header); verification happens inside the session so a rejection
// closes the socket without creating any engine state.
func (h *Handlers) HandleWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = bearerToken(c.GetHeader("Authorization"))
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(h.log, h.chatService, conn, h.sinkBufferSize)
	session.Run(token)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
