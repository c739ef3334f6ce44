package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// Client keeps the mailing list audience in step with the lead base.
type Client struct {
	apiKey     string
	listID     string
	baseURL    string
	httpClient *http.Client
}

// NewClient derives the API host from the data center suffix of the key
// ("...-us21").
func NewClient(apiKey, listID string) *Client {
	dc := "us1"
	if i := strings.LastIndex(apiKey, "-"); i >= 0 {
		dc = apiKey[i+1:]
	}
	return &Client{
		apiKey:     apiKey,
		listID:     listID,
		baseURL:    fmt.Sprintf("https://%s.api.mailchimp.com/3.0", dc),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// UpsertMember adds or updates the audience member, then applies the lead's
// tags and its stage as member tags.
func (c *Client) UpsertMember(ctx context.Context, p queue.SyncPayload) error {
	if c.apiKey == "" || c.listID == "" {
		return fmt.Errorf("mailchimp: api key or list id not configured")
	}

	memberPath := fmt.Sprintf("/lists/%s/members/%s", c.listID, SubscriberHash(p.Email))

	member := memberRequest{
		EmailAddress: p.Email,
		StatusIfNew:  "subscribed",
		MergeFields: map[string]any{
			"FNAME": p.FirstName,
			"LNAME": p.LastName,
			"SCORE": p.Score,
			"STAGE": p.Stage,
		},
	}
	if err := c.do(ctx, http.MethodPut, memberPath, member); err != nil {
		return fmt.Errorf("mailchimp member %s: %w", p.Email, err)
	}

	tags := tagsRequest{Tags: []memberTag{{Name: "stage_" + p.Stage, Status: "active"}}}
	for _, t := range p.Tags {
		tags.Tags = append(tags.Tags, memberTag{Name: t, Status: "active"})
	}
	if err := c.do(ctx, http.MethodPost, memberPath+"/tags", tags); err != nil {
		return fmt.Errorf("mailchimp tags %s: %w", p.Email, err)
	}

	log.Printf("✅ Mailchimp: %s upserted with %d tags", p.Email, len(tags.Tags))
	return nil
}

// SubscriberHash is the member id Mailchimp expects: md5 of the lower-cased
// address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func (c *Client) do(ctx context.Context, method, path string, in any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth("ligue", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Title != "" {
		return fmt.Errorf("%d %s: %s", resp.StatusCode, apiErr.Title, apiErr.Detail)
	}
	return fmt.Errorf("%d - %s", resp.StatusCode, string(body))
}
