package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
	Out       io.Writer
}

func (c *client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

// call hace el request y falla si el status no es 2xx.
func (c *client) call(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = b
	}
	status, b, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Code != "" {
			if apiErr.Detail != "" {
				return nil, fmt.Errorf("%s %s: %d %s: %s (%s)", method, path, status, apiErr.Code, apiErr.Message, apiErr.Detail)
			}
			return nil, fmt.Errorf("%s %s: %d %s: %s", method, path, status, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("%s %s: status=%d", method, path, status)
	}
	return b, nil
}

func (c *client) print(body []byte) {
	if len(body) == 0 {
		fmt.Fprintln(c.Out, "ok")
		return
	}
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Fprintln(c.Out, string(p))
			return
		}
	}
	fmt.Fprintln(c.Out, string(body))
}
