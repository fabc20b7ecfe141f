// Package router provides a small HTTP router with pattern matching,
// middleware support, and URL parameter extraction.
//
// The router supports the following patterns:
//   - Exact match: /api/projects
//   - Named parameters: /api/projects/:id
//   - Wildcard matching: /assets/*
//   - Nested parameters: /api/desktop/sessions/:id/windows/:app/:action
//
// Example usage:
//
//	r := router.New()
//	r.Use(router.RecoveryMiddleware(log), router.LoggingMiddleware(log))
//	r.GET("/api/projects/:id", getProject)
//	r.DELETE("/api/projects/:id", deleteProject, auth.RequireAdmin)
//	http.ListenAndServe(":5000", r)
package router
