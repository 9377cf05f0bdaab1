// Package api exposes the read-only HTTP endpoints of the power manager.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kilianp07/powermanager/api/decisions"
	"github.com/kilianp07/powermanager/api/groups"
	"github.com/kilianp07/powermanager/core/decisionlog"
	"github.com/kilianp07/powermanager/infra/logger"
)

// Config defines settings of the HTTP API.
type Config struct {
	// Addr is the listen address. Empty disables the API.
	Addr string `json:"addr"`
	// Token, when set, is required as bearer token on the decisions endpoint.
	Token string `json:"token"`
}

// NewMux registers the API handlers. The decisions endpoint is omitted when
// store is nil.
func NewMux(store decisionlog.LogStore, view groups.BoundsView, token string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/groups/bounds", groups.NewBoundsHandler(view))
	if store != nil {
		mux.Handle("/api/decisions", decisions.NewLogHandler(store, token))
	}
	return mux
}

// Serve runs an HTTP server on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("api-server").Errorf("api server shutdown: %v", err)
		}
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
