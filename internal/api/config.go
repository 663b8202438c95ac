package api

import (
	"context"
	"strings"
)

// GetConfig returns the daemon's raw config file contents.
//
// The config is JSON5 and may contain comments, so it is returned verbatim
// rather than decoded.
func (c *Client) GetConfig(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, "GET", "/config", nil)
	if err != nil {
		return "", err
	}

	body, err := readBody(resp)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// PatchConfig replaces the daemon's config with newConfig.
func (c *Client) PatchConfig(ctx context.Context, newConfig string) error {
	return c.doAction(ctx, "PATCH", "/config", strings.NewReader(newConfig), "Octyne failed to load the new config")
}

// ReloadConfig asks the daemon to re-read its config from disk.
func (c *Client) ReloadConfig(ctx context.Context) error {
	return c.doAction(ctx, "GET", "/config/reload", nil, "Octyne failed to reload the config")
}
