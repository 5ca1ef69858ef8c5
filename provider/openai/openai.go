//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package openai provides a CompletionProvider backed by the OpenAI API
// or any OpenAI-compatible endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"trpc.group/trpc-go/trpc-canvas-go/provider"
)

// Provider calls the chat completions endpoint with one system and one
// user message per request.
type Provider struct {
	client openai.Client
	model  string
}

type options struct {
	apiKey        string
	baseURL       string
	openaiOptions []openaiopt.RequestOption
}

// Option configures the Provider.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(apiKey string) Option {
	return func(o *options) { o.apiKey = apiKey }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithOpenAIOptions appends raw openai-go request options.
func WithOpenAIOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) { o.openaiOptions = append(o.openaiOptions, opts...) }
}

// New creates an OpenAI-backed completion provider for the given model.
func New(model string, opts ...Option) *Provider {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.openaiOptions...)
	return &Provider{
		client: openai.NewClient(clientOpts...),
		model:  model,
	}
}

// Info implements provider.CompletionProvider.
func (p *Provider) Info() provider.Info {
	return provider.Info{Name: "openai", Model: p.model}
}

// Complete implements provider.CompletionProvider.
func (p *Provider) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &provider.Error{StatusCode: apiErr.StatusCode, Message: apiErr.Message}
		}
		return "", &provider.Error{Message: err.Error()}
	}
	if len(completion.Choices) == 0 {
		return "", &provider.Error{Message: fmt.Sprintf("model %q returned no choices", p.model)}
	}
	return completion.Choices[0].Message.Content, nil
}
