package notify

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"matrix-bruteforce/internal/retry"
)

const pushoverAPI = "https://api.pushover.net/1/messages.json"

// Priority levels for Pushover
const (
	PriorityLowest    = -2
	PriorityLow       = -1
	PriorityNormal    = 0
	PriorityHigh      = 1
	PriorityEmergency = 2
)

// Notifier sends push notifications
type Notifier struct {
	appToken string
	userKey  string
	enabled  bool
	endpoint string
	client   *http.Client
	breaker  *retry.CircuitBreaker
}

// New creates a new Pushover notifier
// If appToken or userKey is empty, notifications are disabled
func New(appToken, userKey string) *Notifier {
	return &Notifier{
		appToken: appToken,
		userKey:  userKey,
		enabled:  appToken != "" && userKey != "",
		endpoint: pushoverAPI,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: retry.NewCircuitBreaker(3, 5*time.Minute),
	}
}

// WithEndpoint points the notifier at a different messages URL
func (n *Notifier) WithEndpoint(endpoint string) *Notifier {
	n.endpoint = endpoint
	return n
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a notification with normal priority
func (n *Notifier) Send(title, message string) error {
	return n.SendWithPriority(title, message, PriorityNormal)
}

// SendWithPriority sends a notification with specified priority. After
// repeated failures further sends fail fast with retry.ErrCircuitOpen.
func (n *Notifier) SendWithPriority(title, message string, priority int) error {
	if !n.enabled {
		return nil
	}
	if !n.breaker.Allow() {
		return retry.ErrCircuitOpen
	}

	data := url.Values{}
	data.Set("token", n.appToken)
	data.Set("user", n.userKey)
	data.Set("title", title)
	data.Set("message", message)
	data.Set("priority", fmt.Sprintf("%d", priority))

	// Emergency priority requires retry and expire parameters
	if priority == PriorityEmergency {
		data.Set("retry", "60")
		data.Set("expire", "3600")
	}

	resp, err := n.client.PostForm(n.endpoint, data)
	if err != nil {
		n.breaker.RecordFailure()
		return fmt.Errorf("pushover request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.breaker.RecordFailure()
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}

	n.breaker.RecordSuccess()
	return nil
}

// NotifySearchComplete reports a finished search. Runs with matches are
// sent at high priority.
func (n *Notifier) NotifySearchComplete(target string, matchCount int, digest string) error {
	priority := PriorityLow
	title := fmt.Sprintf("No matches for %q", target)
	if matchCount > 0 {
		priority = PriorityHigh
		title = fmt.Sprintf("%d matches for %q", matchCount, target)
	}
	message := fmt.Sprintf("Target: %q\nMatches: %d\nDigest: %s",
		target, matchCount, shortenHash(strings.ToLower(digest)))
	return n.SendWithPriority(title, message, priority)
}

// shortenHash returns a shortened hash
func shortenHash(hash string) string {
	if len(hash) > 18 {
		return hash[:18] + "..."
	}
	return hash
}
