package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/igsync/internal/server"
	"github.com/desertthunder/igsync/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultCallbackTimeout = 5 * time.Minute

// Link runs the browser-based OAuth flow for a single user: it issues an
// authorization URL, opens it, and waits for the redirect on a local server.
func (r *Runner) Link(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")
	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultCallbackTimeout
	}

	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	intent, err := engine.InitiateLink(userID)
	if err != nil {
		return err
	}

	callback := server.NewCallbackHandler(engine)
	router := server.NewBasicRouter()
	router.Handler(callback)

	listenAddr, err := callbackAddr(r.config.Instagram.RedirectURI)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: listenAddr, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("callback server failed", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	if cmd.Bool("no-browser") {
		if err := r.writePlain("Open this URL to authorize:\n\n  %s\n\n", intent.AuthorizationURL); err != nil {
			return err
		}
	} else {
		r.logger.Info("opening browser", "url", intent.AuthorizationURL)
		if err := shared.OpenBrowser(intent.AuthorizationURL); err != nil {
			r.logger.Warn("could not open browser, open the URL manually", "err", err)
			if err := r.writePlain("Open this URL to authorize:\n\n  %s\n\n", intent.AuthorizationURL); err != nil {
				return err
			}
		}
	}

	r.logger.Info("waiting for authorization", "addr", listenAddr, "timeout", timeout)

	select {
	case result := <-callback.Result():
		if err := result.Error(); err != nil {
			return err
		}
		link := result.Link
		return r.writePlain("Linked @%s (%s) for user %s. Token expires %s.\n",
			link.Username, link.InstagramUserID, link.UserID,
			link.TokenExpiresAt.Format(time.RFC3339))
	case <-time.After(timeout):
		return fmt.Errorf("timed out waiting for the OAuth callback after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// callbackAddr derives the local listen address from the configured redirect
// URI so the browser redirect lands on the server started above.
func callbackAddr(redirectURI string) (string, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return "", fmt.Errorf("%w: invalid redirect_uri: %v", shared.ErrInvalidConfig, err)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: redirect_uri has no host", shared.ErrInvalidConfig)
	}

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	return host + ":" + port, nil
}
