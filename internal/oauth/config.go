package oauth

import (
	"golang.org/x/oauth2"

	"github.com/garrettladley/pulse/internal/config"
)

const (
	authURL  = "https://api.prod.whoop.com/oauth/oauth2/auth"
	tokenURL = "https://api.prod.whoop.com/oauth/oauth2/token" //nolint:gosec // not credentials, just endpoint URL
)

// offline grants the refresh token; the rest cover what sync reads.
var scopes = []string{
	"offline",
	"read:recovery",
	"read:cycles",
	"read:sleep",
	"read:workout",
	"read:profile",
}

func NewConfig(whoop config.Whoop) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     whoop.ClientID,
		ClientSecret: whoop.ClientSecret,
		RedirectURL:  whoop.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
