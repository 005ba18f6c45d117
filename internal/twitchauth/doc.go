// Package twitchauth acquires IGDB bearer tokens from Twitch using the
// OAuth2 client-credentials grant.
//
// Twitch documents the token request with client_id, client_secret and grant_type
// in the query string of a POST. golang.org/x/oauth2 form-encodes them in the body,
// so requests are rewritten by a custom transport before they leave the process.
//
//	auth, err := twitchauth.New(clientID, clientSecret)
//	token, err := auth.Authenticate(ctx)
//
// Tokens carry no expiry information for callers; a token is considered stale only
// once the API rejects it.
package twitchauth
