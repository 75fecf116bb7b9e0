package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultMaxAttempts = 4

// CallbackNotifier POSTs JSON payloads to a callback URL, retrying transient
// failures with exponential backoff. Each attempt has a 10-second timeout;
// the waits between attempts are 2^attempt seconds (1, 2, 4, 8). Exhausting
// the budget surfaces the last error to the caller.
type CallbackNotifier struct {
	client      *http.Client
	maxAttempts int
	sleep       func(time.Duration)
}

// NewCallbackNotifier creates a notifier with the default retry budget.
func NewCallbackNotifier() *CallbackNotifier {
	return &CallbackNotifier{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		maxAttempts: defaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

// Notify sends the payload, retrying on network failure or non-2xx response.
func (n *CallbackNotifier) Notify(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < n.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = n.post(ctx, url, body)
		if lastErr == nil {
			return nil
		}

		log.Printf("notify attempt %d/%d failed: %v", attempt+1, n.maxAttempts, lastErr)
		if attempt < n.maxAttempts-1 {
			n.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return fmt.Errorf("notify %s: %d attempts exhausted: %w", url, n.maxAttempts, lastErr)
}

func (n *CallbackNotifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("callback returned %d", resp.StatusCode)
	}
	return nil
}
