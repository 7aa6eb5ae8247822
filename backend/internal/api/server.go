package api

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warden/backend/internal/confirm"
	"warden/backend/pkg/config"
)

// Server is the ops HTTP surface that runs beside the gateway: health,
// session status, and pending-confirmation visibility.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// New builds the ops server and its routes.
func New(cfg *config.Config, session *discordgo.Session, store *confirm.Store, log *zap.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/status", func(c *gin.Context) {
			status := gin.H{"connected": false}
			if session.State != nil && session.State.User != nil {
				status["connected"] = true
				status["user_id"] = session.State.User.ID
				status["username"] = session.State.User.Username
				status["guilds"] = len(session.State.Guilds)
			}
			c.JSON(http.StatusOK, status)
		})

		api.GET("/confirmations", func(c *gin.Context) {
			pending := store.List()
			items := make([]gin.H, 0, len(pending))
			for _, p := range pending {
				items = append(items, gin.H{
					"id":         p.ID,
					"requester":  p.Request.RequesterID,
					"actions":    len(p.Actions),
					"expires_at": p.ExpiresAt.UTC().Format(time.RFC3339),
				})
			}
			c.JSON(http.StatusOK, gin.H{
				"count":   len(pending),
				"pending": items,
			})
		})
	}

	return &Server{
		srv: &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: router,
		},
		logger: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("ops server started", zap.String("addr", s.srv.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
