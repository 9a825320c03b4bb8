// Package server provides HTTP routing, middleware, and the thin JSON API
// over the account engine.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with
// method filtering.
//
// # API Handlers
//
// [InstagramHandler] exposes the linking, sync, refresh and unlink
// operations under /api/instagram. Responses use a {success, message, data}
// envelope; failures are mapped from the shared error sentinels to HTTP
// statuses in one place ([StatusFor]), so replayed callbacks surface as 400
// and upstream faults as 500 without leaking internals.
//
// # CLI Callback Handler
//
// [CallbackHandler] serves the OAuth redirect during CLI-driven link flows:
// it completes the link through the engine, renders a close-this-window
// page, and delivers the result over a channel exactly once.
package server
