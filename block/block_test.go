//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *Definition {
	return &Definition{
		ID:          "core/summarizer",
		Name:        "Summarizer",
		Description: "Summarizes connected notes.",
		Author:      "tester",
		Version:     "1.0.0",
		Settings: []SettingSpec{
			{
				Name:    "length",
				Type:    SettingChoice,
				Default: "medium",
				Options: map[string]string{"short": "Short", "medium": "Medium"},
			},
			{Name: "bullets", Type: SettingBoolean, Default: false},
		},
	}
}

func TestDefinition_Validate(t *testing.T) {
	require.NoError(t, validDefinition().Validate())

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"empty id", func(d *Definition) { d.ID = "" }},
		{"empty version", func(d *Definition) { d.Version = "" }},
		{"unknown logic kind", func(d *Definition) { d.Logic.Kind = "wasm" }},
		{"duplicate setting", func(d *Definition) {
			d.Settings = append(d.Settings, SettingSpec{Name: "length", Type: SettingText})
		}},
		{"unknown setting type", func(d *Definition) {
			d.Settings[0].Type = "dropdown"
		}},
		{"choice without options", func(d *Definition) {
			d.Settings[0].Options = nil
		}},
		{"default outside options", func(d *Definition) {
			d.Settings[0].Default = "epic"
		}},
		{"mistyped default", func(d *Definition) {
			d.Settings[1].Default = "yes"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDefinition()
			tt.mutate(d)
			assert.Error(t, d.Validate())
		})
	}
}

func TestDefinition_LogicDefaults(t *testing.T) {
	d := validDefinition()
	assert.Equal(t, LogicTemplate, d.LogicKind())
	assert.Equal(t, "prompt.tmpl", d.LogicFile())

	d.Logic = Logic{Kind: LogicCommand, File: "transform.py"}
	assert.Equal(t, LogicCommand, d.LogicKind())
	assert.Equal(t, "transform.py", d.LogicFile())
}

func TestDefinition_ResolveConfig(t *testing.T) {
	d := validDefinition()

	// Defaults fill absent values, undeclared keys are dropped.
	resolved, err := d.ResolveConfig(map[string]any{"stray": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"length": "medium", "bullets": false}, resolved)

	// Declared values pass through when well-typed.
	resolved, err = d.ResolveConfig(map[string]any{"length": "short", "bullets": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"length": "short", "bullets": true}, resolved)

	// Mistyped values are rejected.
	_, err = d.ResolveConfig(map[string]any{"bullets": "true"})
	assert.Error(t, err)
	_, err = d.ResolveConfig(map[string]any{"length": "epic"})
	assert.Error(t, err)
}

func TestDefinition_ResolveConfigRequired(t *testing.T) {
	d := &Definition{
		ID: "core/translator", Name: "Translator", Description: "x",
		Author: "tester", Version: "1.0.0",
		Settings: []SettingSpec{
			{Name: "to", Type: SettingText, Format: FormatLanguage, Required: true},
		},
	}
	require.NoError(t, d.Validate())

	_, err := d.ResolveConfig(nil)
	assert.Error(t, err)

	resolved, err := d.ResolveConfig(map[string]any{"to": "zh-CN"})
	require.NoError(t, err)
	assert.Equal(t, "zh-CN", resolved["to"])

	_, err = d.ResolveConfig(map[string]any{"to": "not a language"})
	assert.Error(t, err)
}

func TestSettingSpec_NumberValues(t *testing.T) {
	s := SettingSpec{Name: "count", Type: SettingNumber}
	assert.NoError(t, s.checkValue(3))
	assert.NoError(t, s.checkValue(float64(3.5)))
	assert.Error(t, s.checkValue("3"))
}
