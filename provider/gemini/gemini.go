//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package gemini provides a CompletionProvider backed by the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"trpc.group/trpc-go/trpc-canvas-go/provider"
)

// Provider calls the Gemini generate-content endpoint.
type Provider struct {
	client *genai.Client
	model  string
}

type options struct {
	apiKey       string
	clientConfig *genai.ClientConfig
}

// Option configures the Provider.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithClientConfig supplies a full genai client config, overriding the
// API key option.
func WithClientConfig(config *genai.ClientConfig) Option {
	return func(o *options) { o.clientConfig = config }
}

// New creates a Gemini-backed completion provider for the given model.
func New(ctx context.Context, model string, opts ...Option) (*Provider, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	config := o.clientConfig
	if config == nil {
		config = &genai.ClientConfig{
			APIKey:  o.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
	}
	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Provider{client: client, model: model}, nil
}

// Info implements provider.CompletionProvider.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: "gemini", Model: p.model}
}

// Complete implements provider.CompletionProvider.
func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		}
	}
	response, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(userPrompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &provider.Error{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return "", &provider.Error{Message: err.Error()}
	}
	text := response.Text()
	if text == "" {
		return "", &provider.Error{Message: fmt.Sprintf("model %q returned no text", p.model)}
	}
	return text, nil
}
