package oauth

import "time"

// AuthorizationRequest captures the query parameters of an authorize request.
type AuthorizationRequest struct {
	ResponseType string
	ClientID     string
	RedirectURI  string
	Scope        string
	State        string
}

// AuthorizationCode is a one-time credential minted after explicit consent.
//
// A code that has been redeemed or has expired can never again yield tokens.
type AuthorizationCode struct {
	Code        string
	ClientID    string
	UserID      string
	RedirectURI string
	Scope       string
	ExpiresAt   time.Time
}

// AccessToken is an opaque bearer credential scoped to one client and subject.
type AccessToken struct {
	Token     string
	ClientID  string
	UserID    string
	Scope     string
	ExpiresAt time.Time
}

// RefreshToken records the long-lived credential issued alongside an access
// token. It is stored as an auditable artifact; no renewal grant consumes it.
type RefreshToken struct {
	Token       string
	AccessToken string
	ExpiresAt   time.Time
}

// ConsentParty identifies one side of the consent prompt.
type ConsentParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConsentDescriptor is the validated authorize request handed to the external
// consent UI. The echoed fields must round-trip untouched through the UI and
// come back on the decision POST, where they are re-validated server-side.
type ConsentDescriptor struct {
	Client  ConsentParty `json:"client"`
	Subject ConsentParty `json:"subject"`
	Scopes  []Scope      `json:"scopes"`

	ClientID    string `json:"client_id"`
	RedirectURI string `json:"redirect_uri"`
	Scope       string `json:"scope"`
	State       string `json:"state,omitempty"`
}
