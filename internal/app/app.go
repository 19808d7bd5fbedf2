package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sharetube/multiview/internal/client"
	"github.com/sharetube/multiview/internal/controller"
	"github.com/sharetube/multiview/internal/metrics"
	"github.com/sharetube/multiview/internal/repository/connection/inmemory"
	volumeredis "github.com/sharetube/multiview/internal/repository/volume/redis"
	"github.com/sharetube/multiview/internal/service/chat"
	"github.com/sharetube/multiview/internal/service/gift"
	"github.com/sharetube/multiview/internal/service/viewer"
	"github.com/sharetube/multiview/pkg/ctxlogger"
	"github.com/sharetube/multiview/pkg/redisclient"
	"golang.org/x/time/rate"
)

type AppConfig struct {
	Host             string        `json:"host"`
	Port             int           `json:"port"`
	LogLevel         string        `json:"log_level"`
	RedisPort        int           `json:"redis_port"`
	RedisHost        string        `json:"redis_host"`
	RedisPassword    string        `json:"-"`
	VolumeTTL        time.Duration `json:"volume_ttl"`
	StreamsLimit     int           `json:"streams_limit"`
	TickInterval     time.Duration `json:"tick_interval"`
	SwapDuration     time.Duration `json:"swap_duration"`
	ChatPollInterval time.Duration `json:"chat_poll_interval"`
	ChatSendRate     float64       `json:"chat_send_rate"`
	ChatSendBurst    int           `json:"chat_send_burst"`
	EventsAPIURL     string        `json:"events_api_url"`
	ChatAPIURL       string        `json:"chat_api_url"`
	PaymentsAPIURL   string        `json:"payments_api_url"`
	HTTPTimeout      time.Duration `json:"http_timeout"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.StreamsLimit < 1 || cfg.StreamsLimit > 3 {
		return fmt.Errorf("streams limit must be between 1 and 3")
	}
	if cfg.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be greater than 0")
	}
	if cfg.SwapDuration <= 0 {
		return fmt.Errorf("swap duration must be greater than 0")
	}
	if cfg.ChatPollInterval <= 0 {
		return fmt.Errorf("chat poll interval must be greater than 0")
	}
	if cfg.ChatSendRate <= 0 || cfg.ChatSendBurst < 1 {
		return fmt.Errorf("chat send rate and burst must be greater than 0")
	}
	if cfg.PaymentsAPIURL == "" {
		return fmt.Errorf("payments api url is required")
	}
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be greater than 0")
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newHandler wires the viewer stack on top of an existing redis client.
func newHandler(cfg *AppConfig, rc *redis.Client, reg *prometheus.Registry, logger *slog.Logger) http.Handler {
	collector := metrics.NewCollector(reg)

	deps := &viewer.Deps{
		Volumes:  volumeredis.NewRepo(rc, cfg.VolumeTTL, logger),
		Recorder: collector,
		Logger:   logger,
	}
	if cfg.EventsAPIURL != "" {
		deps.Events = client.NewEventsClient(cfg.EventsAPIURL, cfg.HTTPTimeout)
	}
	if cfg.ChatAPIURL != "" {
		deps.Chat = client.NewChatClient(cfg.ChatAPIURL, cfg.HTTPTimeout)
	}

	viewerService := viewer.NewService(&viewer.Config{
		StreamsLimit:   cfg.StreamsLimit,
		TickInterval:   cfg.TickInterval,
		SwapDuration:   cfg.SwapDuration,
		PersistTimeout: cfg.HTTPTimeout,
		Chat: chat.Config{
			PollInterval: cfg.ChatPollInterval,
			SendRate:     rate.Limit(cfg.ChatSendRate),
			SendBurst:    cfg.ChatSendBurst,
		},
	}, deps)
	giftService := gift.NewService(client.NewPaymentsClient(cfg.PaymentsAPIURL, cfg.HTTPTimeout), logger)

	controller := controller.NewController(
		viewerService,
		giftService,
		inmemory.NewRepo(logger),
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		logger,
	)

	return controller.GetMux()
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	rc, err := redisclient.NewRedisClient(&redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: newHandler(cfg, rc, reg, logger),
	}

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

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-serverCtx.Done()

	return nil
}
