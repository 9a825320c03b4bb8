// Package repositories provides the sqlite persistence layer for accounts
// and media.
//
// Each repository implements keyed CRUD for one entity. Writes are scoped
// per logical operation; no transaction here ever spans a network call.
package repositories
