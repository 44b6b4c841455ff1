package slicebox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/sbx/internal/domain"
)

// GetBoxes returns all paired boxes
func (c *Client) GetBoxes(ctx context.Context) ([]domain.Box, error) {
	var boxes []domain.Box
	if err := c.getJSON(ctx, "/api/boxes", &boxes); err != nil {
		return nil, err
	}
	return boxes, nil
}

// AddBox posts a box entity as-is
func (c *Client) AddBox(ctx context.Context, box domain.Box) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/boxes", box)
	return err
}

// GenerateBaseURL creates a pending box for remoteBoxName and returns the URL
// the remote node should use to connect back
func (c *Client) GenerateBaseURL(ctx context.Context, remoteBoxName string) (string, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/boxes/generatebaseurl", stringValue{Value: remoteBoxName})
	if err != nil {
		return "", err
	}

	var resp stringValue
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse base URL response: %w", err)
	}
	return resp.Value, nil
}

// AddRemoteBox connects to a remote box using the base URL it generated
func (c *Client) AddRemoteBox(ctx context.Context, name, baseURL string) (*domain.Box, error) {
	body, err := c.doRequest(ctx, http.MethodPost, "/api/boxes/addremotebox", remoteBox{Name: name, BaseURL: baseURL})
	if err != nil {
		return nil, err
	}

	var box domain.Box
	if len(body) > 0 {
		if err := json.Unmarshal(body, &box); err != nil {
			return nil, fmt.Errorf("failed to parse box response: %w", err)
		}
	}
	return &box, nil
}

// DeleteBox removes a box
func (c *Client) DeleteBox(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/boxes/%d", id), nil)
	return err
}
