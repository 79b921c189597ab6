package dashboard

import (
	"errors"

	"orderwarden/internal/client"
)

var (
	// ErrUnauthenticated is returned when nobody is signed in or the API
	// rejected the identity. The user has been redirected to sign in.
	ErrUnauthenticated = client.ErrUnauthenticated
	// ErrBusy rejects an action while the same action is still in flight.
	ErrBusy = errors.New("action already in progress")
	// ErrSyncFailed wraps a marketplace sync the server reported as failed.
	ErrSyncFailed = errors.New("etsy sync failed")

	ErrInvalidOrder = errors.New("invalid order")
)
