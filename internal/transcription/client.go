package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/logger"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Client talks to the call-transcription vendor: paginated inventory
// listings for meetings and phone calls, plus a per-id transcript fetch.
type Client struct {
	baseURL  string
	apiKey   string
	pageSize int
	maxPages int
	http     *http.Client
	log      *logger.Logger
}

func NewClient(cfg config.VendorConfig, sync config.SyncConfig, log *logger.Logger) *Client {
	pageSize := sync.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}
	maxPages := sync.MaxPages
	if maxPages <= 0 {
		maxPages = 50
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		pageSize: pageSize,
		maxPages: maxPages,
		http:     &http.Client{Timeout: 15 * time.Second},
		log:      log.WithComponent("transcription"),
	}
}

// ListItem is one entry of the vendor's meeting/phone-call inventory.
type ListItem struct {
	ID          string           `json:"id"`
	Title       string           `json:"name"`
	AccountID   string           `json:"client_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
	DurationSec int              `json:"duration_seconds"`
	Sellers     []types.Attendee `json:"sellers"`
	Customers   []types.Attendee `json:"customers"`

	Type types.TranscriptType `json:"-"`
}

type listResponse struct {
	Items         []ListItem `json:"items"`
	NextPageToken string     `json:"next_page_token"`
}

// ListMeetings pages through the vendor's meetings inventory.
func (c *Client) ListMeetings(ctx context.Context) ([]ListItem, error) {
	return c.list(ctx, "/v1/meetings", types.TranscriptMeeting)
}

// ListPhoneCalls pages through the vendor's phone-call inventory.
func (c *Client) ListPhoneCalls(ctx context.Context) ([]ListItem, error) {
	return c.list(ctx, "/v1/phone-calls", types.TranscriptPhoneCall)
}

func (c *Client) list(ctx context.Context, path string, kind types.TranscriptType) ([]ListItem, error) {
	var (
		all   []ListItem
		token string
	)
	for page := 0; page < c.maxPages; page++ {
		u, err := url.Parse(c.baseURL + path)
		if err != nil {
			return nil, fmt.Errorf("vendor url: %w", err)
		}
		q := u.Query()
		q.Set("limit", strconv.Itoa(c.pageSize))
		if token != "" {
			q.Set("page_token", token)
		}
		u.RawQuery = q.Encode()

		var resp listResponse
		if err := c.doJSON(ctx, http.MethodGet, u.String(), &resp); err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		for i := range resp.Items {
			resp.Items[i].Type = kind
		}
		all = append(all, resp.Items...)

		c.log.WithField("path", path).WithField("page", page).
			WithField("items", len(resp.Items)).Debug("vendor page fetched")

		if resp.NextPageToken == "" {
			return all, nil
		}
		token = resp.NextPageToken
	}
	c.log.WithField("path", path).WithField("max_pages", c.maxPages).
		Warn("vendor listing hit page ceiling")
	return all, nil
}

// FetchTranscript returns the raw vendor payload for one transcript id.
// The shape varies by vendor endpoint version; callers run it through
// Normalize before storing.
func (c *Client) FetchTranscript(ctx context.Context, id string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v1/transcripts/%s", c.baseURL, url.PathEscape(id))
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", id, err)
	}
	return raw, nil
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, target interface{}) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("vendor server error: %s", strings.TrimSpace(string(body)))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("vendor rejected request: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}
		if len(body) == 0 {
			lastErr = fmt.Errorf("empty vendor response")
			return lastErr
		}
		if err := json.Unmarshal(body, target); err != nil {
			lastErr = fmt.Errorf("decode vendor response: %w", err)
			return lastErr
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return lastErr
		}
		return err
	}
	return nil
}
