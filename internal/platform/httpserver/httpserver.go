package httpserver

import (
	"net/http"
	"time"

	"childminder/internal/platform/config"
)

// New builds the API server. Payment requests wait on the card gateway, so
// the write timeout stays above the gateway client timeout.
func New(cfg config.Server, handler http.Handler) *http.Server {
	read, write := cfg.ReadTimeout, cfg.WriteTimeout
	if read <= 0 {
		read = 30 * time.Second
	}
	if write <= 0 {
		write = 60 * time.Second
	}
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       read,
		WriteTimeout:      write,
		IdleTimeout:       2 * write,
	}
}
