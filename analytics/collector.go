// Package analytics ships session lifecycle events to an external
// collector. The app must never stall or fail because the collector
// is down, so every send is fire-and-forget behind a circuit breaker.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"qstack-client/config"
	"qstack-client/models"
	"qstack-client/utils"
)

type Collector struct {
	url string
	key string
	hc  *http.Client
	cb  *utils.CircuitBreaker
}

// NewCollector returns nil when no collector is configured; callers
// treat a nil collector as disabled.
func NewCollector(cfg *config.Config) *Collector {
	if cfg.AnalyticsURL == "" {
		return nil
	}
	return &Collector{
		url: cfg.AnalyticsURL,
		key: cfg.AnalyticsKey,
		hc:  &http.Client{Timeout: 5 * time.Second},
		cb:  utils.NewCircuitBreaker("analytics"),
	}
}

func (c *Collector) OnLogin(profile models.UserProfile) {
	go c.capture("$identify", profile.ID, map[string]any{
		"name":  profile.Name,
		"email": profile.Email,
		"role":  profile.Role,
	})
}

func (c *Collector) OnLogout() {
	go c.capture("session_end", "", nil)
}

func (c *Collector) capture(event, distinctID string, props map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := c.cb.Execute(ctx, func() error {
		body, err := json.Marshal(map[string]any{
			"api_key":     c.key,
			"event":       event,
			"distinct_id": distinctID,
			"properties":  props,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/capture", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		if resp.StatusCode >= http.StatusBadRequest {
			return &statusError{code: resp.StatusCode}
		}
		return nil
	})
	if err != nil && err != utils.ErrBreakerOpen {
		log.Printf("analytics: capture %s failed: %v", event, err)
	}
}

type statusError struct{ code int }

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}
