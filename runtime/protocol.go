//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package runtime

import (
	"encoding/json"
	"strings"

	"trpc.group/trpc-go/trpc-canvas-go/block"
)

// CommandInput is the JSON document command logic reads on stdin.
type CommandInput struct {
	Text   string         `json:"text"`
	Config map[string]any `json:"config"`
}

// CommandOutput is the optional structured form of command logic's
// stdout. Plain, non-JSON stdout is treated as the user prompt.
type CommandOutput struct {
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
	Text         string `json:"text"`
	Final        bool   `json:"final"`
}

// MarshalCommandInput encodes the stdin payload for command logic.
func MarshalCommandInput(input Input) ([]byte, error) {
	return json.Marshal(CommandInput{Text: input.Text, Config: input.Config})
}

// ParseCommandOutput interprets command logic's stdout. Empty output is an
// ExecutionError; a JSON object selects between a prompt artifact and a
// final result; anything else is the user prompt verbatim.
func ParseCommandOutput(def *block.Definition, out string) (Result, error) {
	out = strings.TrimSpace(out)
	if out == "" {
		return Result{}, &ExecutionError{BlockID: def.ID, Err: ErrEmptyResult}
	}
	if strings.HasPrefix(out, "{") {
		var payload CommandOutput
		if err := json.Unmarshal([]byte(out), &payload); err == nil {
			if payload.Final {
				if payload.Text == "" {
					return Result{}, &ExecutionError{BlockID: def.ID, Err: ErrEmptyResult}
				}
				return Result{Text: payload.Text, Final: true}, nil
			}
			if payload.UserPrompt != "" {
				return Result{
					SystemPrompt: payload.SystemPrompt,
					UserPrompt:   payload.UserPrompt,
				}, nil
			}
		}
	}
	return Result{UserPrompt: out}, nil
}
