// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth resolves the local user context. Real authentication is
// delegated to the deployment environment; the client only needs a stable
// user identifier to scope chat history.
package auth

import (
	"errors"
	"os"
	"os/user"
)

// EnvUserID overrides the resolved user id when set.
const EnvUserID = "NEUROFORGE_USER"

// ErrNoUser is returned when no user identity can be resolved.
var ErrNoUser = errors.New("no user identity available")

// User is the authenticated user context required by the submit flow.
type User struct {
	ID string
}

// Resolve picks the user identity, in order of precedence: the explicit id
// (from configuration), the NEUROFORGE_USER environment variable, the
// operating system username.
func Resolve(configured string) (*User, error) {
	if configured != "" {
		return &User{ID: configured}, nil
	}
	if env := os.Getenv(EnvUserID); env != "" {
		return &User{ID: env}, nil
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return &User{ID: u.Username}, nil
	}
	return nil, ErrNoUser
}
