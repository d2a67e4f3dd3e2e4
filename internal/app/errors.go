package app

import "errors"

// Sentinel errors for common application errors
var (
	ErrNotInitialized  = errors.New("application not initialized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoUserID        = errors.New("user id is not configured; run 'applytrack config set --key user_id --value <id>' or pass --user")
	ErrNoToken         = errors.New("api token is not configured; set api_token or APPLYTRACK_API_TOKEN")
)
