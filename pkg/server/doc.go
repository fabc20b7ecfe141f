// Package server provides the HTTP server that hosts the portfolio API and
// its built frontend.
//
// The server supports:
//   - HTTP/1.1, and HTTP/2 via TLS ALPN
//   - Static file serving with an index.html fallback for client routes
//   - Graceful shutdown with context cancellation
//   - Health, readiness and host metrics endpoints
//   - TLS 1.3 only
//
// Example usage:
//
//	srv := server.New(server.Config{Addr: ":5000", Handler: r})
//	go srv.ListenAndServe()
//	srv.Shutdown(ctx)
package server
