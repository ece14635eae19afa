// Package invoicing talks to a Siwapp-compatible invoicing endpoint.
package invoicing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/schnell18/titra/internal/errors"
)

// Item is one invoice line: a project/resource pairing with its quantity in
// the caller's display unit.
type Item struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitaryCost float64 `json:"unitary_cost"`
}

// Invoice is the JSON document the endpoint consumes.
type Invoice struct {
	Data struct {
		Attributes struct {
			Name      string `json:"name"`
			IssueDate string `json:"issue_date"`
			Draft     bool   `json:"draft"`
		} `json:"attributes"`
		Relationships struct {
			Items struct {
				Data []itemWrapper `json:"data"`
			} `json:"items"`
		} `json:"relationships"`
	} `json:"data"`
}

type itemWrapper struct {
	Attributes Item `json:"attributes"`
}

// NewInvoice creates a draft invoice dated today with the given line items.
func NewInvoice(name string, issueDate time.Time, items []Item) Invoice {
	var inv Invoice
	inv.Data.Attributes.Name = name
	inv.Data.Attributes.IssueDate = issueDate.Format("2006-01-02")
	inv.Data.Attributes.Draft = true
	inv.Data.Relationships.Items.Data = make([]itemWrapper, len(items))
	for i, item := range items {
		inv.Data.Relationships.Items.Data[i] = itemWrapper{Attributes: item}
	}
	return inv
}

// Client submits invoices with token authentication.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Client for the given endpoint and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit posts the invoice and returns the upstream HTTP status code. The
// caller decides what any status other than 201 means; transport failures
// are surfaced as external errors. Submission is attempted exactly once.
func (c *Client) Submit(ctx context.Context, invoice Invoice) (int, error) {
	body, err := json.Marshal(invoice)
	if err != nil {
		return 0, errors.NewExternalError("siwapp", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/invoices", bytes.NewReader(body))
	if err != nil {
		return 0, errors.NewExternalError("siwapp", err)
	}
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.NewExternalError("siwapp", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
