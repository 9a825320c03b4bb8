package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/igsync/internal/tasks"
)

// CallbackResult contains the result of a CLI-driven link flow.
type CallbackResult struct {
	Link *tasks.LinkResult
	err  error
}

func (c *CallbackResult) Error() error {
	return c.err
}

// CallbackHandler handles the OAuth redirect during CLI link flows.
// Implements the [Handler] interface for registration with a [Router].
//
// The handler completes the link through the engine and delivers the
// outcome over a channel exactly once; later hits are rejected so a
// replayed redirect cannot restart the flow.
type CallbackHandler struct {
	engine      AccountService
	resultChan  chan CallbackResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewCallbackHandler creates a new callback handler backed by the engine.
func NewCallbackHandler(engine AccountService) *CallbackHandler {
	return &CallbackHandler{
		engine:     engine,
		resultChan: make(chan CallbackResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *CallbackHandler) Routes() []string {
	return []string{"/api/instagram/callback"}
}

// ServeHTTP handles the OAuth callback request.
//
// Reads code and state from the query, completes the link, and sends the
// result through the result channel.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" {
		errParam := r.URL.Query().Get("error")
		errDesc := r.URL.Query().Get("error_description")
		err := fmt.Errorf("authorization failed: %s - %s", errParam, errDesc)
		h.Send(CallbackResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	result, err := h.engine.CompleteLink(r.Context(), code, state, nil)
	if err != nil {
		h.Send(CallbackResult{err: err})
		http.Error(w, "Linking failed", StatusFor(err))
		return
	}

	h.Send(CallbackResult{Link: result})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `
<!DOCTYPE html>
<html>
<head>
    <title>Account Linked</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #E1306C; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1>✓ Instagram Account Linked</h1>
        <p>Signed in as @%s. You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`, result.Username)
}

// Send sends the callback result through the channel (only once).
func (h *CallbackHandler) Send(result CallbackResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving link flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *CallbackHandler) Result() <-chan CallbackResult {
	return h.resultChan
}
