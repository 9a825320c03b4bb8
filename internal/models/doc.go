// Package models defines the persistent data model for the Instagram
// integration service.
//
// [Account] is the durable link between a host-app user and an Instagram
// business account, including the long-lived access token and its expiry.
// [Media] is a single synchronized media item owned by exactly one account.
//
// Repositories implement [Repository] for a concrete model type.
package models
