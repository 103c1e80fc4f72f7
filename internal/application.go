package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/renju-backend/internal/config"
	"github.com/rocketscienceinc/renju-backend/internal/repository"
	"github.com/rocketscienceinc/renju-backend/internal/repository/storage"
	"github.com/rocketscienceinc/renju-backend/internal/turnclock"
	"github.com/rocketscienceinc/renju-backend/internal/usecase"
	"github.com/rocketscienceinc/renju-backend/transport/rest"
	"github.com/rocketscienceinc/renju-backend/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	roomRepo, closer, err := openRoomRepository(ctx, conf)
	if err != nil {
		return err
	}

	defer func() {
		if err = closer.Close(); err != nil {
			log.Error("could not close room storage", "error", err)
		}
	}()

	// connections from a previous process are gone, so their rooms are too.
	if conf.Storage.ResetOnStart {
		if err = roomRepo.Purge(ctx); err != nil {
			return fmt.Errorf("could not reset room storage: %w", err)
		}
		log.Info("Room storage reset", "driver", conf.Storage.Driver)
	}

	hub := websocket.NewHub(logger)
	coordinator := usecase.NewRoomCoordinator(logger, roomRepo, repository.NewSessionRepository(), hub)

	if conf.Game.TurnTimeout > 0 {
		clock := turnclock.New(logger, conf.Game.TurnTimeout, func(roomID, connID string) {
			if _, timeoutErr := coordinator.Timeout(context.Background(), connID, roomID); timeoutErr != nil {
				log.Debug("turn timeout ignored", "room_id", roomID, "conn_id", connID, "error", timeoutErr)
			}
		})
		coordinator.SetTurnClock(clock)
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, coordinator, conf.CORSOrigins)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, coordinator, hub, conf.CORSOrigins)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRoomRepository picks the durable room store named by the config.
func openRoomRepository(ctx context.Context, conf *config.Config) (repository.RoomRepository, io.Closer, error) {
	switch conf.Storage.Driver {
	case config.DriverRedis:
		redisAddrString := conf.Redis.GetRedisAddr()
		if redisAddrString == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewRoomRepository(redisStorage.Connection), redisStorage, nil

	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLRoomRepository(sqliteStorage.Connection), sqliteStorage, nil

	default:
		return repository.NewMemoryRoomRepository(), nopCloser{}, nil
	}
}
