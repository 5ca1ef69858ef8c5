//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package provider defines the completion provider capability the core
// depends on. Provider selection and credentials are resolved by the host
// and handed in as a bound implementation.
package provider

import (
	"context"
	"fmt"
)

// CompletionProvider turns a (system, user) prompt pair into generated
// text.
type CompletionProvider interface {
	// Complete performs one completion call. Failures are *Error where
	// the upstream service reported them.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// Info returns basic information about the provider.
	Info() Info
}

// Info describes a provider.
type Info struct {
	Name  string
	Model string
}

// Error is a failure reported by the completion provider service:
// network, auth or rate-limit problems. StatusCode is zero when the
// failure never reached the service.
type Error struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}
