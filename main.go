package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/flock"

	"github.com/matt-g-everett/ledtween/animator"
	"github.com/matt-g-everett/ledtween/stream"
	"github.com/matt-g-everett/ledtween/timeline"
)

type app struct {
	config     *stream.Config
	configPath string
	log        *slog.Logger

	loop       *timeline.Loop
	client     mqtt.Client
	host       *animator.Host
	controller *stream.Controller
	streamer   *stream.Streamer
}

func newApp(configPath string, config *stream.Config, log *slog.Logger) (*app, error) {
	a := &app{config: config, configPath: configPath, log: log, loop: timeline.NewLoop()}

	options := mqtt.NewClientOptions().
		AddBroker(config.Mqtt.URL).
		SetClientID(config.Mqtt.ClientID).
		SetUsername(config.Mqtt.Username).
		SetPassword(config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect).
		SetConnectionLostHandler(a.handleConnectionLost)
	a.client = mqtt.NewClient(options)

	a.host = animator.NewHost(a.loop, nil, animator.WithLogger(log), animator.WithFPS(config.Stream.FPS))
	strip := stream.NewStrip(config.Stream.Pixels)
	var err error
	a.controller, err = stream.NewController(a.host, strip, config.Scenes, log)
	if err != nil {
		return nil, err
	}
	pub := &stream.MQTTPublisher{Client: a.client, QoS: config.Stream.QoS, Timeout: time.Second}
	a.streamer = stream.NewStreamer(a.loop, strip, pub, config.Mqtt.Topics.Stream, config.Stream.FPS, log)
	return a, nil
}

func (a *app) handleOnConnect(client mqtt.Client) {
	a.log.Info("connected", "broker", a.config.Mqtt.URL)
}

func (a *app) handleConnectionLost(client mqtt.Client, err error) {
	a.log.Warn("connection lost", "broker", a.config.Mqtt.URL, "error", err)
}

func (a *app) run(ctx context.Context) error {
	if token := a.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer a.client.Disconnect(250)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	a.loop.Do(func() {
		if err := a.controller.Start(); err != nil {
			cancel(err)
			return
		}
		a.streamer.Start()
	})

	go func() {
		err := stream.WatchConfig(ctx, a.configPath, -1, a.log, func(c *stream.Config) {
			a.loop.Do(func() {
				if err := a.controller.Reload(c.Scenes); err != nil {
					a.log.Warn("failed to reload scenes", "error", err)
				}
			})
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Warn("not watching config", "path", a.configPath, "error", err)
		}
	}()

	a.loop.Run(ctx)
	if err := context.Cause(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func main() {
	mqtt.ERROR = log.New(os.Stderr, "mqtt: ", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML or TOML config file.")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error).")
	logJSON := flag.Bool("log-json", false, "Log in JSON.")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		slog.Error("invalid log level", "level", *logLevel, "error", err)
		os.Exit(2)
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if *logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	config, err := stream.ReadConfig(*configPath)
	if err != nil {
		logger.Error("failed to read config", "error", err)
		os.Exit(1)
	}
	logger.Info("config", "broker", config.Mqtt.URL, "topic", config.Mqtt.Topics.Stream,
		"pixels", config.Stream.Pixels, "fps", config.Stream.FPS, "scenes", len(config.Scenes))

	// Brokers drop the older of two connections sharing a client ID, so
	// only one streamer may run per ID.
	lockPath := filepath.Join(os.TempDir(), "ledtween-"+config.Mqtt.ClientID+".lock")
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		logger.Error("failed to lock", "path", lockPath, "error", err)
		os.Exit(1)
	}
	if !ok {
		logger.Error("already streaming", "client", config.Mqtt.ClientID)
		os.Exit(1)
	}
	defer fl.Unlock()

	a, err := newApp(*configPath, config, logger)
	if err != nil {
		logger.Error("failed to configure", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.run(ctx); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}
