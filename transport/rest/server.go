package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/renju-backend/internal/usecase"
)

type lobby interface {
	ListRooms(ctx context.Context) ([]usecase.RoomSummary, error)
	GetRoom(ctx context.Context, roomID string) (*usecase.RoomState, error)
}

type Server struct {
	logger         *slog.Logger
	lobby          lobby
	allowedOrigins []string
}

func New(logger *slog.Logger, lobby lobby, allowedOrigins []string) *Server {
	return &Server{
		logger:         logger.With("component", "rest"),
		lobby:          lobby,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the gin engine with every lobby route.
func (that *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(that.corsConfig()))

	router.GET("/ping", pingHandler)

	api := router.Group("/api")
	{
		api.GET("/rooms", that.listRooms)
		api.GET("/rooms/:id", that.getRoom)
	}

	return router
}

func (that *Server) corsConfig() cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	if len(that.allowedOrigins) == 0 || that.allowedOrigins[0] == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = that.allowedOrigins
	}

	return config
}

// Start - starts HTTP server and stops it when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown http server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
