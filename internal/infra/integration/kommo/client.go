package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// Client pushes scored leads into the Kommo CRM pipeline.
type Client struct {
	apiToken   string
	baseURL    string
	statusID   int
	httpClient *http.Client
}

func NewClient(baseURL, apiToken string, statusID int) *Client {
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		statusID:   statusID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// PushLead finds or creates the contact by email and opens a lead for it,
// tagged with the lead stage and its own tags.
func (c *Client) PushLead(ctx context.Context, p queue.SyncPayload) error {
	if c.apiToken == "" {
		return fmt.Errorf("kommo: api token not configured")
	}

	contactID, err := c.findOrCreateContact(ctx, p)
	if err != nil {
		return fmt.Errorf("kommo contact for %s: %w", p.Email, err)
	}

	tags := []tag{{Name: "stage_" + p.Stage}}
	for _, t := range p.Tags {
		tags = append(tags, tag{Name: t})
	}

	lead := []leadRequest{{
		Name:     leadName(p),
		StatusID: c.statusID,
		Price:    0,
		Embedded: leadEmbedded{
			Tags:     tags,
			Contacts: []contactRef{{ID: contactID}},
		},
	}}

	var result embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/leads", lead, &result); err != nil {
		return fmt.Errorf("kommo lead for %s: %w", p.Email, err)
	}
	if len(result.Embedded.Leads) == 0 {
		return fmt.Errorf("kommo: lead for %s not created", p.Email)
	}

	log.Printf("✅ Kommo: lead #%d created for %s (score %d)", result.Embedded.Leads[0].ID, p.Email, p.Score)
	return nil
}

func (c *Client) findOrCreateContact(ctx context.Context, p queue.SyncPayload) (int, error) {
	var found embeddedIDs
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(p.Email), nil, &found)
	if err != nil {
		return 0, err
	}
	if len(found.Embedded.Contacts) > 0 {
		return found.Embedded.Contacts[0].ID, nil
	}

	contact := []contactRequest{{
		Name:      displayName(p),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		CustomFields: []customField{
			{FieldCode: "EMAIL", Values: []fieldValue{{Value: p.Email, EnumCode: "WORK"}}},
		},
	}}
	if p.JobTitle != "" {
		contact[0].CustomFields = append(contact[0].CustomFields,
			customField{FieldCode: "POSITION", Values: []fieldValue{{Value: p.JobTitle}}})
	}

	var created embeddedIDs
	if err := c.do(ctx, http.MethodPost, "/contacts", contact, &created); err != nil {
		return 0, err
	}
	if len(created.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("contact id missing from response")
	}
	return created.Embedded.Contacts[0].ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	// Kommo answers an empty search with 204
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s %s: %d - %s", method, path, resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}

func displayName(p queue.SyncPayload) string {
	if name := strings.TrimSpace(p.FirstName + " " + p.LastName); name != "" {
		return name
	}
	return p.Email
}

func leadName(p queue.SyncPayload) string {
	if p.CompanyDomain == "" {
		return displayName(p)
	}
	return fmt.Sprintf("%s - %s", displayName(p), p.CompanyDomain)
}
