package server

import (
	"context"
	"net/http"

	"github.com/desertthunder/igsync/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the service.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// AccountService is the engine surface the HTTP layer consumes.
// This abstraction allows for easier testing and decoupling from the
// concrete engine.
type AccountService interface {
	InitiateLink(userID string) (*tasks.LinkIntent, error)
	CompleteLink(ctx context.Context, code, state string, progress chan<- tasks.ProgressUpdate) (*tasks.LinkResult, error)
	Sync(ctx context.Context, userID string, mediaLimit int, progress chan<- tasks.ProgressUpdate) (*tasks.SyncResult, error)
	RefreshToken(ctx context.Context, userID string) (*tasks.LinkResult, error)
	Unlink(ctx context.Context, userID string, deleteData bool) error
	IsLinked(userID string) (bool, error)
}
