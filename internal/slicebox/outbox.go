package slicebox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mmcdole/sbx/internal/domain"
)

// GetOutbox returns every outbox entry
func (c *Client) GetOutbox(ctx context.Context) ([]domain.OutboxEntry, error) {
	var entries []domain.OutboxEntry
	if err := c.getJSON(ctx, "/api/outbox", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOutboxEntry removes a single outbox entry
func (c *Client) DeleteOutboxEntry(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/outbox/%d", id), nil)
	return err
}
