// Package sqlite implements identity provider persistence over SQLite.
package sqlite
