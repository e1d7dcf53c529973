package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/NovaDash/internal/services/janitor"
)

type dashAPIOpts struct {
	httpAddr string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type keyEventsConsumer interface {
	Run(ctx context.Context, backoff time.Duration, handler func(key, value []byte) error)
}

func runDashAPI(ctx context.Context, opts dashAPIOpts, handler http.Handler, jn *janitor.Janitor, consumer keyEventsConsumer, onKeyEvent func(key, value []byte) error) error {
	lis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}
	if opts.onListen != nil {
		opts.onListen(lis.Addr().String())
	}

	if jn != nil {
		go func() { _ = jn.Run(ctx) }()
	}
	if consumer != nil {
		go func() {
			slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
			consumer.Run(ctx, 2*time.Second, onKeyEvent)
		}()
	}

	httpErr := make(chan error, 1)
	go func() { httpErr <- runHTTPServer(ctx, lis, handler) }()

	select {
	case <-ctx.Done():
		<-httpErr
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, handler http.Handler) error {
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
