// Package server composes and runs the identity provider process boundary.
//
// It hosts the OAuth HTTP endpoints over a single SQLite store so code
// redemption and user identity decisions are made from one source of truth.
package server
