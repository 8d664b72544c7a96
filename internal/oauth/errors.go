package oauth

import "errors"

var (
	ErrNoToken                = errors.New("no token found - please authenticate first")
	ErrTokenExpired           = errors.New("token expired and no refresh token available")
	ErrStateMismatch          = errors.New("oauth state mismatch")
	ErrMissingCode            = errors.New("missing authorization code")
	ErrNoPendingAuthorization = errors.New("no authorization in progress")
	ErrAuthorizationInFlight  = errors.New("authorization already in progress")
)

const (
	paramCode             = "code"
	paramState            = "state"
	paramError            = "error"
	paramErrorDescription = "error_description"
)
