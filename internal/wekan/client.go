// Package wekan looks up cards on an external kanban board through its
// export endpoint. It is used by the timecard backfill flow to attach card
// references to entries that predate the integration.
package wekan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/schnell18/titra/internal/errors"
)

// Card is the subset of a kanban card the backfill needs.
type Card struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	BoardID  string `json:"boardId"`
	Type     string `json:"type"`
	Archived bool   `json:"archived"`
}

// boardExport is the shape of the board export document.
type boardExport struct {
	Cards []Card `json:"cards"`
}

// Client fetches board exports.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new Client instance.
func NewClient() *Client {
	return &Client{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// FetchBoardCards downloads the board export behind the given URL and
// returns its cards.
func (c *Client) FetchBoardCards(ctx context.Context, exportURL string) ([]Card, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, exportURL, nil)
	if err != nil {
		return nil, errors.NewExternalError("wekan", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalError("wekan", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewExternalError("wekan", fmt.Errorf("board export returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalError("wekan", err)
	}

	var export boardExport
	if err := json.Unmarshal(body, &export); err != nil {
		return nil, errors.NewExternalError("wekan", err)
	}
	return export.Cards, nil
}

// FindCardByTitle returns the first unarchived card matching the title on
// the given board.
func FindCardByTitle(cards []Card, title, boardID string) (Card, bool) {
	for _, card := range cards {
		if card.Archived {
			continue
		}
		if card.Type != "" && card.Type != "cardType-card" {
			continue
		}
		if card.Title == title && card.BoardID == boardID {
			return card, true
		}
	}
	return Card{}, false
}
