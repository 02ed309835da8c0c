// Package serve runs the background daemon: an HTTP endpoint for shortcut
// commands and surface requests, plus a log of store changes.
package serve

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/marklet/pkg/app"
	"tableflip.dev/marklet/pkg/store"
)

// Serve coordinates daemon startup.
type Serve struct {
	Service     *app.Service
	Persistence store.Persistence
	Addr        string
	Log         *zap.Logger

	OnListening func(net.Addr)
}

// Do listens on Addr until ctx is done.
func (s Serve) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("serve: no service configured")
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	addr := s.Addr
	if addr == "" {
		addr = store.DefaultServeAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if s.OnListening != nil {
		s.OnListening(ln.Addr())
	}
	log.Info("listening", zap.String("addr", ln.Addr().String()))

	if s.Persistence != nil {
		events, err := s.Persistence.Watch(ctx)
		if err != nil {
			log.Warn("store watch unavailable", zap.Error(err))
		} else {
			go logEvents(log, events)
		}
	}

	srv := &http.Server{Handler: Routes(s.Service, log)}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func logEvents(log *zap.Logger, events <-chan store.Event) {
	for ev := range events {
		switch ev.Type {
		case store.EventKeyChanged:
			log.Info("store changed", zap.String("partition", string(ev.Partition)), zap.String("key", ev.Key))
		case store.EventInvalidated:
			log.Warn("store watch invalidated")
		}
	}
}
