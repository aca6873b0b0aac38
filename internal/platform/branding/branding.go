// Package branding centralizes user-facing product naming.
package branding

// AppName is the product name surfaced to client applications.
const AppName = "Corp IdP"
