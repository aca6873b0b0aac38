// Package user defines the subject identity records referenced by tokens.
package user
