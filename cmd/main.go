package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/schoolbus-tracker/internal/config"
	"github.com/ukydev/schoolbus-tracker/internal/logging"
	"github.com/ukydev/schoolbus-tracker/internal/mirror"
	"github.com/ukydev/schoolbus-tracker/internal/server"
)

const shutdownTimeout = 5 * time.Second

var mainDepsProvider = defaultDeps

func main() {
	if err := realMain(mainDepsProvider()); err != nil {
		log.WithError(err).Fatal("Server exited with error")
	}
}

type mainDeps struct {
	loadConfig    func() (*config.Config, error)
	connectMirror func(config.MQTTConfig) (mirror.Publisher, error)
	notify        func(chan<- os.Signal, ...os.Signal)
	listen        func(addr string) (net.Listener, error)
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:    config.Load,
		connectMirror: connectMirror,
		notify:        signal.Notify,
		listen: func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		},
	}
}

func connectMirror(cfg config.MQTTConfig) (mirror.Publisher, error) {
	if !cfg.Enabled() {
		return mirror.Nop{}, nil
	}
	return mirror.NewMQTTPublisher(cfg)
}

func realMain(deps mainDeps) error {
	cfg, err := deps.loadConfig()
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	publisher, err := deps.connectMirror(cfg.MQTT)
	if err != nil {
		log.WithError(err).Warn("MQTT mirror unavailable, continuing without it")
		publisher = mirror.Nop{}
	}
	defer publisher.Close()

	ln, err := deps.listen(cfg.Addr())
	if err != nil {
		return err
	}

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	return Run(context.Background(), cfg, publisher, ln, signals)
}

// Run serves the tracker on ln until a signal arrives or ctx ends, then
// shuts the server down.
func Run(ctx context.Context, cfg *config.Config, publisher mirror.Publisher, ln net.Listener, signals <-chan os.Signal) error {
	router, err := server.NewRouter(cfg, publisher)
	if err != nil {
		ln.Close()
		return err
	}

	// Streams run on hijacked connections that Shutdown does not wait for;
	// cancelling the base context ends them and stops their feeds.
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	log.WithFields(log.Fields{
		"addr":          ln.Addr().String(),
		"tick_interval": cfg.TickInterval,
		"mqtt":          cfg.MQTT.Enabled(),
	}).Info("School bus tracker listening")

	select {
	case sig := <-signals:
		log.WithField("signal", sig.String()).Info("Shutting down")
	case <-ctx.Done():
		log.Info("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
