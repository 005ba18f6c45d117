package twitchauth

import (
	"golang.org/x/oauth2"
)

// TokenURL is the Twitch authority endpoint that issues IGDB app access tokens.
const TokenURL = "https://id.twitch.tv/oauth2/token"

// Endpoint defines the OAuth2 endpoint for Twitch app access tokens.
// Twitch accepts client credentials as parameters only, never via basic auth.
var Endpoint = oauth2.Endpoint{
	TokenURL:  TokenURL,
	AuthStyle: oauth2.AuthStyleInParams,
}
