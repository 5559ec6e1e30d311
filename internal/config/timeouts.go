package config

import "time"

// HTTP server timeouts tuned for LINE webhook traffic. Webhook requests are
// small JSON bodies; the response is written immediately after signature
// verification, so only the idle timeout needs to be generous.
const (
	// WebhookHTTPRead is the HTTP server read timeout for webhook requests.
	WebhookHTTPRead = 10 * time.Second

	// WebhookHTTPWrite is the HTTP server write timeout.
	WebhookHTTPWrite = 30 * time.Second

	// WebhookHTTPIdle is the HTTP server idle timeout for keep-alive connections.
	WebhookHTTPIdle = 120 * time.Second
)
