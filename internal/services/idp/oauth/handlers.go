package oauth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/corp-idp/internal/services/idp/session"
	"github.com/louisbranch/corp-idp/internal/services/idp/storage"
)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type userInfoResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	MemberSince string `json:"member_since"`
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleAuthorizeRequest(w, r)
	case http.MethodPost:
		s.handleAuthorizeDecision(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAuthorizeRequest validates an incoming authorize request and hands the
// resulting consent descriptor to the external consent UI.
func (s *Server) handleAuthorizeRequest(w http.ResponseWriter, r *http.Request) {
	identity, err := session.FromRequest(r, s.sessions)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	params := r.URL.Query()
	request := AuthorizationRequest{
		ResponseType: params.Get("response_type"),
		ClientID:     params.Get("client_id"),
		RedirectURI:  params.Get("redirect_uri"),
		Scope:        params.Get("scope"),
		State:        params.Get("state"),
	}
	if request.Scope == "" {
		request.Scope = ScopeReadUser
	}

	if request.ClientID == "" || request.RedirectURI == "" || request.ResponseType == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "client_id, redirect_uri, and response_type are required")
		return
	}
	if request.ResponseType != "code" {
		writeJSONError(w, http.StatusBadRequest, "unsupported_response_type", "only the 'code' response type is supported")
		return
	}

	// Failures before the redirect target is verified never redirect: sending
	// the browser to an unvalidated redirect_uri is itself a vulnerability.
	client, ok := s.registry.Resolve(request.ClientID)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "unknown or unregistered client")
		return
	}
	if request.RedirectURI != client.RedirectURI {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not registered for this client")
		return
	}

	scopes := ParseScope(request.Scope)
	if len(scopes) == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "no valid scopes requested")
		return
	}

	descriptor := ConsentDescriptor{
		Client:      ConsentParty{ID: client.ID, Name: client.DisplayName()},
		Subject:     ConsentParty{ID: identity.UserID, Name: identity.Name},
		Scopes:      scopes,
		ClientID:    request.ClientID,
		RedirectURI: request.RedirectURI,
		Scope:       request.Scope,
		State:       request.State,
	}

	consentURL := strings.TrimSpace(s.config.ConsentURL)
	if consentURL == "" {
		writeJSON(w, http.StatusOK, descriptor)
		return
	}

	redirectURL, err := url.Parse(consentURL)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "invalid consent ui url")
		return
	}
	query := redirectURL.Query()
	query.Set("client_id", descriptor.ClientID)
	query.Set("client_name", descriptor.Client.Name)
	query.Set("redirect_uri", descriptor.RedirectURI)
	query.Set("scope", descriptor.Scope)
	if descriptor.State != "" {
		query.Set("state", descriptor.State)
	}
	query.Set("subject", descriptor.Subject.Name)
	redirectURL.RawQuery = query.Encode()
	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// handleAuthorizeDecision commits the consent decision posted back by the
// external consent UI. The decision payload is untrusted, so client and
// redirect URI are re-validated before any code is minted.
func (s *Server) handleAuthorizeDecision(w http.ResponseWriter, r *http.Request) {
	identity, err := session.FromRequest(r, s.sessions)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}

	clientID := r.FormValue("client_id")
	redirectURI := r.FormValue("redirect_uri")
	scope := r.FormValue("scope")
	state := r.FormValue("state")
	decision := r.FormValue("authorize")

	client, ok := s.registry.Resolve(clientID)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "unknown or unregistered client")
		return
	}
	if redirectURI != client.RedirectURI {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "redirect_uri is not registered for this client")
		return
	}

	if decision != "yes" {
		s.redirectError(w, r, redirectURI, state, "access_denied", "the user denied the authorization request")
		return
	}

	scopes := ParseScope(scope)
	if len(scopes) == 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "no valid scopes requested")
		return
	}

	code, err := s.store.CreateAuthorizationCode(client.ID, identity.UserID, redirectURI, JoinScope(scopes), s.config.CodeTTL)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to create authorization code")
		return
	}

	log.Printf("authorization code issued for client %s, user %s", client.ID, identity.UserID)

	redirectURL, err := url.Parse(redirectURI)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "invalid redirect uri")
		return
	}
	query := redirectURL.Query()
	query.Set("code", code.Code)
	if state != "" {
		query.Set("state", state)
	}
	redirectURL.RawQuery = query.Encode()
	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "invalid form data")
		return
	}

	grantType := r.FormValue("grant_type")
	code := r.FormValue("code")
	redirectURI := r.FormValue("redirect_uri")
	clientID := r.FormValue("client_id")
	clientSecret := r.FormValue("client_secret")

	if grantType != "authorization_code" {
		writeJSONError(w, http.StatusBadRequest, "unsupported_grant_type", "only authorization_code is supported")
		return
	}
	if code == "" || redirectURI == "" || clientID == "" || clientSecret == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "code, redirect_uri, client_id, and client_secret are required")
		return
	}

	client, err := s.registry.Authenticate(clientID, clientSecret)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid_client", "invalid client credentials")
		return
	}

	authCode, err := s.store.GetAuthorizationCode(code)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to look up authorization code")
		return
	}
	if authCode == nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant", "invalid authorization code")
		return
	}
	if authCode.ClientID != client.ID {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant", "authorization code was issued to another client")
		return
	}
	if authCode.RedirectURI != redirectURI {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant", "redirect_uri does not match the original authorization")
		return
	}
	if !authCode.ExpiresAt.After(s.clock().UTC()) {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant", "authorization code expired")
		return
	}

	// The claim is a single-row compare-and-delete: on concurrent redemption
	// of the same code exactly one request reaches token issuance.
	claimed, err := s.store.ClaimAuthorizationCode(code)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to redeem authorization code")
		return
	}
	if !claimed {
		writeJSONError(w, http.StatusBadRequest, "invalid_grant", "authorization code already redeemed")
		return
	}

	accessToken, err := s.store.CreateAccessToken(authCode.ClientID, authCode.UserID, authCode.Scope, s.config.TokenTTL)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to create access token")
		return
	}
	refreshToken, err := s.store.CreateRefreshToken(accessToken.Token, s.config.RefreshTokenTTL)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to create refresh token")
		return
	}

	log.Printf("access token issued for client %s, user %s", authCode.ClientID, authCode.UserID)

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  accessToken.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.config.TokenTTL.Seconds()),
		RefreshToken: refreshToken.Token,
		Scope:        authCode.Scope,
	})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	token, ok := bearerToken(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "invalid_request", "access token is required")
		return
	}

	access, valid, err := s.store.ValidateAccessToken(token, s.clock())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to validate access token")
		return
	}
	if !valid {
		writeJSONError(w, http.StatusUnauthorized, "invalid_token", "access token is invalid or expired")
		return
	}

	subject, err := s.userStore.GetUser(r.Context(), access.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusInternalServerError, "server_error", "user not found")
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "server_error", "failed to load user")
		return
	}

	// The subject id and registration date are always disclosed; everything
	// else is gated on the token's granted scope.
	response := userInfoResponse{
		ID:          subject.ID,
		MemberSince: subject.CreatedAt.UTC().Format("2006-01-02"),
	}
	if ScopeGranted(access.Scope, ScopeReadUser) {
		response.Name = subject.Name
	}
	if ScopeGranted(access.Scope, ScopeReadEmail) {
		response.Email = subject.Email
	}
	writeJSON(w, http.StatusOK, response)
}

// redirectToLogin sends the browser to the external login collaborator with
// the original authorize URL preserved, so client_id, redirect_uri, scope,
// and state survive the detour.
func (s *Server) redirectToLogin(w http.ResponseWriter, r *http.Request) {
	loginURL := strings.TrimSpace(s.config.LoginURL)
	if loginURL == "" {
		writeJSONError(w, http.StatusUnauthorized, "invalid_request", "authentication is required")
		return
	}
	redirectURL, err := url.Parse(loginURL)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "invalid login url")
		return
	}
	query := redirectURL.Query()
	query.Set("return_to", r.URL.RequestURI())
	redirectURL.RawQuery = query.Encode()
	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// redirectError reports a failure to the client application once a validated
// redirect target exists, echoing state verbatim when present.
func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, redirectURI, state, code, description string) {
	redirectURL, err := url.Parse(redirectURI)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "server_error", "invalid redirect uri")
		return
	}
	query := redirectURL.Query()
	query.Set("error", code)
	query.Set("error_description", description)
	if state != "" {
		query.Set("state", state)
	}
	redirectURL.RawQuery = query.Encode()
	http.Redirect(w, r, redirectURL.String(), http.StatusFound)
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	prefix, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(prefix, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
