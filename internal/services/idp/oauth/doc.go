// Package oauth implements the authorization-server state machine.
//
// It isolates the Authorization Code Grant choreography - request validation,
// consent commit, one-time code redemption, and bearer-token user info - from
// the external login and consent UI collaborators, which only supply an
// authenticated subject and a yes/no decision.
package oauth
