package domain

import "net/http"

// Store handles the local cache (BoltDB + memory).
// Everything in it can be rebuilt from the server; losing it only costs a login.
type Store interface {
	// === Session ===
	GetCookies() ([]*http.Cookie, bool)
	SaveCookies(cookies []*http.Cookie) error
	ClearCookies()

	GetCurrentUser() (*User, bool)
	SaveCurrentUser(user *User) error
	ClearCurrentUser()

	// === Series tags ===
	GetSeriesTags() ([]SeriesTag, bool)
	SaveSeriesTags(tags []SeriesTag) error

	// === Invalidation ===
	InvalidateAll()

	Close() error
}
