package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sharetube/multiview/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

func (v configVar[T]) bind() {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
	volumeTTL = configVar[time.Duration]{
		envKey:       "SERVER_VOLUME_TTL",
		flagKey:      "volume-ttl",
		defaultValue: 30 * 24 * time.Hour,
		usage:        "How long the last chosen volume is remembered",
	}
	streamsLimit = configVar[int]{
		envKey:       "SERVER_STREAMS_LIMIT",
		flagKey:      "streams-limit",
		defaultValue: 3,
		usage:        "Maximum number of concurrent streams per viewer",
	}
	tickInterval = configVar[time.Duration]{
		envKey:       "SERVER_TICK_INTERVAL",
		flagKey:      "tick-interval",
		defaultValue: 200 * time.Millisecond,
		usage:        "Playback enforcement interval",
	}
	swapDuration = configVar[time.Duration]{
		envKey:       "SERVER_SWAP_DURATION",
		flagKey:      "swap-duration",
		defaultValue: 500 * time.Millisecond,
		usage:        "Main stream swap animation length",
	}
	chatPollInterval = configVar[time.Duration]{
		envKey:       "SERVER_CHAT_POLL_INTERVAL",
		flagKey:      "chat-poll-interval",
		defaultValue: 5 * time.Second,
		usage:        "Chat polling interval",
	}
	chatSendRate = configVar[float64]{
		envKey:       "SERVER_CHAT_SEND_RATE",
		flagKey:      "chat-send-rate",
		defaultValue: 1,
		usage:        "Chat messages a viewer may send per second",
	}
	chatSendBurst = configVar[int]{
		envKey:       "SERVER_CHAT_SEND_BURST",
		flagKey:      "chat-send-burst",
		defaultValue: 3,
		usage:        "Chat send burst",
	}
	eventsAPIURL = configVar[string]{
		envKey:       "EVENTS_API_URL",
		flagKey:      "events-api-url",
		defaultValue: "",
		usage:        "Event metadata API base url, empty disables lookups",
	}
	chatAPIURL = configVar[string]{
		envKey:       "CHAT_API_URL",
		flagKey:      "chat-api-url",
		defaultValue: "",
		usage:        "Chat API base url, empty disables chat",
	}
	paymentsAPIURL = configVar[string]{
		envKey:       "PAYMENTS_API_URL",
		flagKey:      "payments-api-url",
		defaultValue: "http://localhost:8081",
		usage:        "Payments API base url",
	}
	httpTimeout = configVar[time.Duration]{
		envKey:       "SERVER_HTTP_TIMEOUT",
		flagKey:      "http-timeout",
		defaultValue: 5 * time.Second,
		usage:        "Timeout of outgoing API and redis calls",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Duration(volumeTTL.flagKey, volumeTTL.defaultValue, volumeTTL.usage)
	pflag.Int(streamsLimit.flagKey, streamsLimit.defaultValue, streamsLimit.usage)
	pflag.Duration(tickInterval.flagKey, tickInterval.defaultValue, tickInterval.usage)
	pflag.Duration(swapDuration.flagKey, swapDuration.defaultValue, swapDuration.usage)
	pflag.Duration(chatPollInterval.flagKey, chatPollInterval.defaultValue, chatPollInterval.usage)
	pflag.Float64(chatSendRate.flagKey, chatSendRate.defaultValue, chatSendRate.usage)
	pflag.Int(chatSendBurst.flagKey, chatSendBurst.defaultValue, chatSendBurst.usage)
	pflag.String(eventsAPIURL.flagKey, eventsAPIURL.defaultValue, eventsAPIURL.usage)
	pflag.String(chatAPIURL.flagKey, chatAPIURL.defaultValue, chatAPIURL.usage)
	pflag.String(paymentsAPIURL.flagKey, paymentsAPIURL.defaultValue, paymentsAPIURL.usage)
	pflag.Duration(httpTimeout.flagKey, httpTimeout.defaultValue, httpTimeout.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	port.bind()
	host.bind()
	logLevel.bind()
	redisPort.bind()
	redisHost.bind()
	redisPassword.bind()
	volumeTTL.bind()
	streamsLimit.bind()
	tickInterval.bind()
	swapDuration.bind()
	chatPollInterval.bind()
	chatSendRate.bind()
	chatSendBurst.bind()
	eventsAPIURL.bind()
	chatAPIURL.bind()
	paymentsAPIURL.bind()
	httpTimeout.bind()

	return &app.AppConfig{
		Host:             viper.GetString(host.flagKey),
		Port:             viper.GetInt(port.flagKey),
		LogLevel:         viper.GetString(logLevel.flagKey),
		RedisPort:        viper.GetInt(redisPort.flagKey),
		RedisHost:        viper.GetString(redisHost.flagKey),
		RedisPassword:    viper.GetString(redisPassword.flagKey),
		VolumeTTL:        viper.GetDuration(volumeTTL.flagKey),
		StreamsLimit:     viper.GetInt(streamsLimit.flagKey),
		TickInterval:     viper.GetDuration(tickInterval.flagKey),
		SwapDuration:     viper.GetDuration(swapDuration.flagKey),
		ChatPollInterval: viper.GetDuration(chatPollInterval.flagKey),
		ChatSendRate:     viper.GetFloat64(chatSendRate.flagKey),
		ChatSendBurst:    viper.GetInt(chatSendBurst.flagKey),
		EventsAPIURL:     viper.GetString(eventsAPIURL.flagKey),
		ChatAPIURL:       viper.GetString(chatAPIURL.flagKey),
		PaymentsAPIURL:   viper.GetString(paymentsAPIURL.flagKey),
		HTTPTimeout:      viper.GetDuration(httpTimeout.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	if err := app.Run(ctx, appConfig); err != nil {
		log.Fatal(err)
	}
}
