package tag

import "time"

// Config holds the suggestion service connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// SuggestURL returns the suggestion endpoint.
func (c *Config) SuggestURL() string {
	return c.BaseURL + "/v1/suggest"
}
