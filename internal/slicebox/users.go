package slicebox

import (
	"context"
	"net/http"

	"github.com/mmcdole/sbx/internal/domain"
)

// GetCurrentUser returns the user owning the current session
func (c *Client) GetCurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.getJSON(ctx, "/api/users/current", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates and stores the session cookie set by the node
func (c *Client) Login(ctx context.Context, user, pass string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/users/login", credentials{User: user, Pass: pass})
	return err
}

// Logout ends the session on the node and forgets the local cookies,
// even when the node could not be reached
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/users/logout", nil)
	c.clearSession()
	return err
}
