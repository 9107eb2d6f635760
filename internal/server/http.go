package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/coderjudith/va-portfolio-chat/internal/config"
	"github.com/coderjudith/va-portfolio-chat/internal/ws"
)

// Server is the HTTP surface: a liveness endpoint at / and the websocket
// route at /ws, behind recovery and CORS middleware.
type Server struct {
	engine *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, wsHandler *ws.Handler) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(cfg.AllowedOrigins))

	engine.GET("/", handleHealth)
	engine.GET("/ws", wsHandler.Serve)

	return &Server{
		engine: engine,
		server: &http.Server{Addr: cfg.Addr, Handler: engine},
	}
}

func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Chat server is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// corsMiddleware mirrors the allow-list applied to websocket upgrades: an
// empty list allows any origin, otherwise only listed origins pass.
// Requests without an Origin header (curl, health checks) always pass.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool)
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			if len(origins) > 0 && !origins[origin] {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Origin")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
