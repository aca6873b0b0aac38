package oauth

import "strings"

// Scope identifiers known to the server. The catalog is a fixed closed set;
// provisioning new scopes is a code change, not configuration.
const (
	ScopeReadUser  = "read_user"
	ScopeReadEmail = "read_email"
)

// Scope is a named permission with its human-readable meaning.
type Scope struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

var catalog = []Scope{
	{ID: ScopeReadUser, Description: "See your name and basic profile"},
	{ID: ScopeReadEmail, Description: "See your corporate email address"},
}

// Scopes returns the full scope catalog.
func Scopes() []Scope {
	out := make([]Scope, len(catalog))
	copy(out, catalog)
	return out
}

// ParseScope splits a scope string on whitespace and keeps the valid subset.
//
// Unknown identifiers are silently dropped, never errored; duplicates collapse
// to the first occurrence. Rejecting an empty valid subset is the
// authorization endpoint's job, not the catalog's.
func ParseScope(scope string) []Scope {
	var valid []Scope
	seen := make(map[string]bool)
	for _, token := range strings.Fields(scope) {
		if seen[token] {
			continue
		}
		for _, known := range catalog {
			if known.ID == token {
				valid = append(valid, known)
				seen[token] = true
				break
			}
		}
	}
	return valid
}

// JoinScope renders a scope set back into its canonical space-separated form.
func JoinScope(scopes []Scope) string {
	ids := make([]string, len(scopes))
	for i, s := range scopes {
		ids[i] = s.ID
	}
	return strings.Join(ids, " ")
}

// ScopeGranted reports whether a granted scope string contains the identifier.
func ScopeGranted(scope, id string) bool {
	for _, token := range strings.Fields(scope) {
		if token == id {
			return true
		}
	}
	return false
}
