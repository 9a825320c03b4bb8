// Package tasks orchestrates Instagram account linking and data sync with
// real-time progress reporting.
//
// # Core Operations
//
// [AccountEngine] drives the multi-step flows:
//
//  1. [AccountEngine.InitiateLink] / [AccountEngine.CompleteLink] : OAuth link
//     - Issues and consumes the single-use CSRF state token
//     - Exchanges the authorization code, upgrades to a long-lived token
//     - Resolves the business account and fetches the profile
//     - Persists the account in one save at the end, so a failure at any
//       earlier step leaves no partial row behind
//
//  2. [AccountEngine.Sync] : Profile and media refresh
//     - Refreshes the token first when it is inside the renewal horizon
//     - Fetches the current profile and recent media from the Graph API
//     - Upserts media keyed by remote media ID, so reruns are idempotent
//
//  3. [AccountEngine.RefreshToken] / [AccountEngine.Unlink] : Lifecycle
//     - Unconditional token renewal with persisted expiry
//     - Soft unlink deactivates and clears the token; hard unlink deletes
//       the account row and its media
//
// Progress channels are optional; sends never block, so a slow or absent
// consumer cannot stall a flow.
package tasks
