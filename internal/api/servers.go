package api

import (
	"context"
	"fmt"
	"strings"
)

// ServerAction is an action accepted by POST /server/{name}.
type ServerAction string

const (
	// ActionStart starts the app.
	ActionStart ServerAction = "START"

	// ActionKill sends SIGKILL to the app.
	ActionKill ServerAction = "KILL"

	// ActionTerm gracefully stops the app.
	ActionTerm ServerAction = "TERM"
)

// Server status codes reported by Octyne.
const (
	StatusOffline = 0
	StatusOnline  = 1
	StatusCrashed = 2
)

// ServerInfo is the per-app entry of GET /servers?extrainfo=true.
type ServerInfo struct {
	Status   int  `json:"status"`
	ToDelete bool `json:"toDelete"`
}

// ServerStatus is the body of GET /server/{name}.
type ServerStatus struct {
	Status      int     `json:"status"`
	CPUUsage    float64 `json:"cpuUsage"`
	MemoryUsage int64   `json:"memoryUsage"`
	TotalMemory int64   `json:"totalMemory"`
	Uptime      int64   `json:"uptime"`
	ToDelete    bool    `json:"toDelete"`
}

// GetServers lists every app managed by the daemon.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - map[string]ServerInfo: Apps keyed by name
//   - error: Any error that occurred
func (c *Client) GetServers(ctx context.Context) (map[string]ServerInfo, error) {
	resp, err := c.doRequest(ctx, "GET", "/servers?extrainfo=true", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Servers map[string]ServerInfo `json:"servers"`
	}
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	if result.Servers == nil {
		result.Servers = map[string]ServerInfo{}
	}
	return result.Servers, nil
}

// GetServer fetches resource usage and state for one app.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: The app name
//
// Returns:
//   - *ServerStatus: The app's status
//   - error: Any error that occurred
func (c *Client) GetServer(ctx context.Context, name string) (*ServerStatus, error) {
	resp, err := c.doRequest(ctx, "GET", "/server/"+escapePath(name), nil)
	if err != nil {
		return nil, err
	}

	var result ServerStatus
	if err := parseResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostServer asks the daemon to start, stop or kill an app.
//
// Parameters:
//   - ctx: Context for cancellation
//   - name: The app name
//   - action: The action to perform
//
// Returns:
//   - error: Any error that occurred
func (c *Client) PostServer(ctx context.Context, name string, action ServerAction) error {
	failure := fmt.Sprintf("Octyne failed to %s the app", strings.ToLower(string(action)))
	return c.doAction(ctx, "POST", "/server/"+escapePath(name), strings.NewReader(string(action)), failure)
}

// legacyGreeting is what Octyne 1.0 answers on GET / instead of a version.
const legacyGreeting = "Hi, octyne is online and listening to this port successfully!"

// GetVersion returns the daemon's version string.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, "GET", "/", nil)
	if err != nil {
		return "", err
	}

	body, err := readBody(resp)
	if err != nil {
		return "", err
	}
	if string(body) == legacyGreeting {
		return "1.0.x", nil
	}

	var result struct {
		Version string `json:"version"`
	}
	if err := jsonUnmarshal(body, &result); err != nil {
		return "", err
	}
	return result.Version, nil
}
