package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/satvikdua06/server/internal/controller"
	"github.com/satvikdua06/server/internal/repository/cache/redis"
	"github.com/satvikdua06/server/internal/repository/connection/inmemory"
	"github.com/satvikdua06/server/internal/room"
	roomservice "github.com/satvikdua06/server/internal/service/room"
	"github.com/satvikdua06/server/internal/service/search"
	"github.com/satvikdua06/server/pkg/ctxlogger"
	"github.com/satvikdua06/server/pkg/redisclient"
)

type AppConfig struct {
	Host               string `json:"host"`
	Port               int    `json:"port"`
	LogLevel           string `json:"log_level"`
	MembersLimit       int    `json:"members_limit"`
	AuthorityPolicy    string `json:"authority_policy"`
	StalenessSec       int    `json:"staleness_sec"`
	SearchCacheTTLSec  int    `json:"search_cache_ttl_sec"`
	SearchResultsLimit int    `json:"search_results_limit"`
	RedisHost          string `json:"redis_host"`
	RedisPort          int    `json:"redis_port"`
	RedisPassword      string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.MembersLimit < 1 {
		return fmt.Errorf("members limit must be greater than 0")
	}
	switch room.AuthorityPolicy(cfg.AuthorityPolicy) {
	case room.PolicyOpen, room.PolicyHostOnly, room.PolicyStaleness:
	default:
		return fmt.Errorf("unknown authority policy: %q", cfg.AuthorityPolicy)
	}
	if cfg.StalenessSec < 1 {
		return fmt.Errorf("staleness threshold must be greater than 0")
	}

	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	searchCache := redis.NewRepo(rc)
	searchService := search.NewService(searchCache, &search.Config{
		Limit:    cfg.SearchResultsLimit,
		CacheTTL: time.Duration(cfg.SearchCacheTTLSec) * time.Second,
	}, logger)

	registry := room.NewRegistry(room.Config{
		AuthorityPolicy:    room.AuthorityPolicy(cfg.AuthorityPolicy),
		StalenessThreshold: time.Duration(cfg.StalenessSec) * time.Second,
	})
	connectionRepo := inmemory.NewRepo()
	roomService := roomservice.NewService(registry, connectionRepo, &roomservice.Config{
		MembersLimit: cfg.MembersLimit,
	}, logger)

	controller := controller.NewController(roomService, searchService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetRouter()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
