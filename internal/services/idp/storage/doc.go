// Package storage defines persistence contracts for the identity provider.
package storage
