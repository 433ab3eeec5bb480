// Package board provides the shared domain types, dense-position ordering
// model, event definitions and Redis channel schema for Corkd boards.
//
// It is used by both the server (to persist and broadcast changes) and by
// client programs (to maintain an optimistic local replica and reconcile
// broadcasts). Keeping the position arithmetic in one package guarantees
// that an optimistic client move and the server-confirmed move produce the
// same ordering.
//
// All Redis channels are namespaced so that multiple Corkd deployments can
// safely share a single Redis server.
package board
