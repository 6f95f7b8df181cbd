// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package inference provides the HTTP client for the remote inference
// endpoint.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the inference client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeBadStatus
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "inference endpoint is unreachable"}
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatRequest is the JSON body sent to the endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the JSON payload returned on success.
type ChatResponse struct {
	Response string `json:"response"`
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the inference client.
type ClientConfig struct {
	// URL is the chat endpoint, e.g. "http://127.0.0.1:5000/chat".
	URL string

	// Timeout bounds the whole request at the transport layer. Zero means
	// no client-side timeout: the caller waits for the request to settle.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		URL:     "http://127.0.0.1:5000/chat",
		Timeout: 0,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the inference endpoint.
//
// The Client is safe for concurrent use, though the submit flow only ever
// keeps a single request in flight.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a new inference client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new inference client with custom
// configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.URL == "" {
		config.URL = DefaultConfig().URL
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Chat sends the raw user text to the endpoint and returns the response
// text. Any non-2xx status, transport failure, or malformed payload is an
// error; no retries are performed.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(ChatRequest{Message: message})
	if err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return "", ErrTimeout
		}
		return "", ErrUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ClientError{
			Type:    ErrTypeBadStatus,
			Message: "chat request failed: " + resp.Status,
		}
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return result.Response, nil
}

// URL returns the configured endpoint URL.
func (c *Client) URL() string {
	return c.config.URL
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return errors.Is(err, ErrTimeout)
}

// IsUnreachable checks if an error indicates the endpoint could not be
// reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return errors.Is(err, ErrUnreachable)
}
