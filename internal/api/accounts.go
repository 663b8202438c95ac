package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"
)

// accountRequest is the body of POST and PATCH /accounts.
type accountRequest struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

// GetAccounts lists the usernames registered with the daemon.
//
// Returns:
//   - []string: Usernames
//   - error: Any error that occurred
func (c *Client) GetAccounts(ctx context.Context) ([]string, error) {
	resp, err := c.doRequest(ctx, "GET", "/accounts", nil)
	if err != nil {
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}
	// Success is a bare array; any object here is an error without a message.
	if !gjson.ParseBytes(body).IsArray() {
		return nil, ErrCorruptResponse
	}

	var accounts []string
	if err := jsonUnmarshal(body, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount registers a new account.
func (c *Client) CreateAccount(ctx context.Context, username, password string) error {
	return c.sendAccount(ctx, "POST", "/accounts", accountRequest{Username: username, Password: password},
		"Octyne failed to create the account")
}

// ChangePassword updates the password of an existing account.
func (c *Client) ChangePassword(ctx context.Context, username, password string) error {
	path := "/accounts?username=" + url.QueryEscape(username)
	return c.sendAccount(ctx, "PATCH", path, accountRequest{Username: username, Password: password},
		"Octyne failed to modify the account")
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, username string) error {
	path := "/accounts?username=" + url.QueryEscape(username)
	return c.doAction(ctx, "DELETE", path, nil, "Octyne failed to delete the account")
}

func (c *Client) sendAccount(ctx context.Context, method, path string, req accountRequest, failure string) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doAction(ctx, method, path, bytes.NewReader(body), failure)
}
