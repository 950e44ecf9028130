package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/config"
	"github.com/GustavoDePieri/ontop-feedback-dashboard-sub001/internal/types"
)

// Client calls the hosted sentiment-inference endpoint: single text in,
// {label, score} out. Callers treat it as unreliable and default to neutral
// when it errors.
type Client struct {
	url    string
	apiKey string
	http   *http.Client
}

func New(cfg config.SentimentConfig) *Client {
	return &Client{
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: 12 * time.Second},
	}
}

type inferenceResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the model's sentiment label and confidence for one text.
func (c *Client) Classify(ctx context.Context, text string) (types.Sentiment, float64, error) {
	if c.url == "" {
		return types.SentimentNeutral, 0, errors.New("sentiment endpoint not configured")
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return types.SentimentNeutral, 0, fmt.Errorf("marshal request: %w", err)
	}

	var out inferenceResponse
	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("inference server error: %s", strings.TrimSpace(string(body)))
			return lastErr
		}
		if resp.StatusCode >= 400 {
			lastErr = fmt.Errorf("inference rejected request: %s", resp.Status)
			return backoff.Permanent(lastErr)
		}
		if err := json.Unmarshal(body, &out); err != nil {
			lastErr = fmt.Errorf("decode inference response: %w", err)
			return lastErr
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 20 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			err = lastErr
		}
		return types.SentimentNeutral, 0, err
	}

	return normalizeLabel(out.Label), out.Score, nil
}

func normalizeLabel(label string) types.Sentiment {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "positive", "pos":
		return types.SentimentPositive
	case "negative", "neg":
		return types.SentimentNegative
	default:
		return types.SentimentNeutral
	}
}
