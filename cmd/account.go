package main

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/igsync/internal/shared"
	"github.com/desertthunder/igsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync fetches the linked account's current profile and recent media and
// persists both, refreshing the token first when it is close to expiry.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	userID := cmd.String("user")
	limit := int(cmd.Int("limit"))

	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.drainProgress(progress)
	}()

	result, err := engine.Sync(ctx, userID, limit, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	if cmd.Bool("json") || cmd.Bool("pretty") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	if err := r.writePlain("Synced @%s: %d media items", result.Profile.Username, len(result.Media)); err != nil {
		return err
	}
	if result.Paging.HasMore {
		return r.writePlain(" (more available, raise --limit to fetch them)\n")
	}
	return r.writePlain("\n")
}

// Refresh renews the user's long-lived access token and prints the new expiry.
func (r *Runner) Refresh(ctx context.Context, cmd *cli.Command) error {
	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	result, err := engine.RefreshToken(ctx, cmd.String("user"))
	if err != nil {
		return err
	}

	return r.writePlain("Token refreshed for @%s. New expiry: %s.\n",
		result.Username, result.TokenExpiresAt.Format(time.RFC3339))
}

// Unlink deactivates the user's account. With --delete the account row and
// all stored media are removed instead.
func (r *Runner) Unlink(ctx context.Context, cmd *cli.Command) error {
	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	userID := cmd.String("user")
	deleteData := cmd.Bool("delete")

	if err := engine.Unlink(ctx, userID, deleteData); err != nil {
		return err
	}

	if deleteData {
		return r.writePlain("Account and stored media deleted for user %s.\n", userID)
	}
	return r.writePlain("Account unlinked for user %s. Stored media was kept.\n", userID)
}

// Status reports whether the user has an active linked account.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	engine, db, err := r.openEngine()
	if err != nil {
		return err
	}
	defer db.Close()

	userID := cmd.String("user")
	account, err := engine.Account(userID)
	if err != nil {
		if errors.Is(err, shared.ErrAccountNotFound) {
			return r.writePlain("No account linked for user %s.\n", userID)
		}
		return err
	}

	if !account.Active {
		return r.writePlain("Account @%s is linked but inactive for user %s.\n", account.Username, userID)
	}

	return r.writePlain("Account @%s is linked for user %s. Token expires %s.\n",
		account.Username, userID, account.TokenExpiresAt.Format(time.RFC3339))
}
