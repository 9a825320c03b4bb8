// Package services contains the clients for the Facebook/Instagram Graph
// API and the short-lived OAuth state store.
//
// # Graph client
//
// [GraphService] implements the [OAuthClient], [ProfileClient] and
// [MediaClient] interfaces against the Graph API. Authorization-code
// exchange goes through [golang.org/x/oauth2]; the long-lived upgrade and
// refresh grants are provider-specific GET endpoints that oauth2.Config
// does not model, so those are plain HTTP calls.
//
// None of the client operations mutate local state. Orchestration and
// persistence live in internal/tasks.
//
// # State store
//
// [StateStore] issues single-use CSRF state tokens binding an authorization
// redirect to the local user who initiated it. Consumption is a single
// atomic test-and-delete, so concurrent callback delivery for the same
// state resolves to exactly one winner.
package services
