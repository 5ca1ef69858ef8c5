//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package block defines transformation units (blocks) and the registry
// that discovers them on disk.
package block

import (
	"fmt"

	"golang.org/x/text/language"
)

// Block categories. The category doubles as the first path segment of the
// block id and of its directory on disk.
const (
	CategoryCore      = "core"
	CategoryCommunity = "community"
)

// Setting types.
const (
	SettingText          = "text"
	SettingMultilineText = "multiline-text"
	SettingChoice        = "enumerated-choice"
	SettingNumber        = "number"
	SettingBoolean       = "boolean"
)

// Setting formats. A format further constrains a text setting's value.
const (
	// FormatLanguage requires the value to parse as a BCP 47 language tag.
	FormatLanguage = "language"
)

// Logic kinds select the executor that runs a block's transform logic.
const (
	LogicTemplate  = "template"
	LogicCommand   = "command"
	LogicContainer = "container"
)

// SettingSpec declares one configurable setting of a block.
type SettingSpec struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Type        string            `json:"type"`
	Required    bool              `json:"required,omitempty"`
	Default     any               `json:"default,omitempty"`
	Format      string            `json:"format,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
}

// Logic points at a block's transform logic artifact.
type Logic struct {
	// Kind selects the executor: template, command or container.
	// Empty means template.
	Kind string `json:"kind,omitempty"`
	// File is the logic artifact, relative to the block directory.
	// Empty means prompt.tmpl.
	File string `json:"file,omitempty"`
}

// Definition is one discovered block. Definitions are immutable once
// loaded; a registry reload replaces them wholesale.
type Definition struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Author      string        `json:"author"`
	Version     string        `json:"version"`
	Category    string        `json:"-"`
	Settings    []SettingSpec `json:"settings,omitempty"`
	Logic       Logic         `json:"logic,omitempty"`

	// Dir is the absolute block directory the definition was loaded from.
	Dir string `json:"-"`
}

// LogicKind returns the effective logic kind.
func (d *Definition) LogicKind() string {
	if d.Logic.Kind == "" {
		return LogicTemplate
	}
	return d.Logic.Kind
}

// LogicFile returns the effective logic artifact name.
func (d *Definition) LogicFile() string {
	if d.Logic.File == "" {
		return "prompt.tmpl"
	}
	return d.Logic.File
}

// Validate checks the manifest-level invariants of a definition.
func (d *Definition) Validate() error {
	for field, value := range map[string]string{
		"id":          d.ID,
		"name":        d.Name,
		"description": d.Description,
		"author":      d.Author,
		"version":     d.Version,
	} {
		if value == "" {
			return fmt.Errorf("manifest field %q is empty", field)
		}
	}
	switch d.Logic.Kind {
	case "", LogicTemplate, LogicCommand, LogicContainer:
	default:
		return fmt.Errorf("unknown logic kind %q", d.Logic.Kind)
	}
	seen := make(map[string]struct{}, len(d.Settings))
	for _, s := range d.Settings {
		if s.Name == "" {
			return fmt.Errorf("setting with empty name")
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("duplicate setting name %q", s.Name)
		}
		seen[s.Name] = struct{}{}
		if err := s.validate(); err != nil {
			return fmt.Errorf("setting %q: %w", s.Name, err)
		}
	}
	return nil
}

func (s *SettingSpec) validate() error {
	switch s.Type {
	case SettingText, SettingMultilineText, SettingChoice, SettingNumber, SettingBoolean:
	default:
		return fmt.Errorf("unknown type %q", s.Type)
	}
	if s.Type == SettingChoice && len(s.Options) == 0 {
		return fmt.Errorf("enumerated-choice setting has no options")
	}
	if s.Default != nil {
		if err := s.checkValue(s.Default); err != nil {
			return fmt.Errorf("default value: %w", err)
		}
	}
	return nil
}

// checkValue verifies that a value matches the setting's declared type.
func (s *SettingSpec) checkValue(value any) error {
	switch s.Type {
	case SettingText, SettingMultilineText:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if s.Format == FormatLanguage {
			if _, err := language.Parse(str); err != nil {
				return fmt.Errorf("invalid language tag %q: %w", str, err)
			}
		}
	case SettingChoice:
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if _, ok := s.Options[str]; !ok {
			return fmt.Errorf("value %q is not one of the declared options", str)
		}
	case SettingNumber:
		switch value.(type) {
		case float64, int, int64:
		default:
			return fmt.Errorf("expected number, got %T", value)
		}
	case SettingBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", value)
		}
	}
	return nil
}

// ResolveConfig filters a node's config down to the settings the block
// declares, applying defaults for absent values. Undeclared keys are
// tolerated but dropped. Declared values that fail the type check are
// rejected.
func (d *Definition) ResolveConfig(config map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(d.Settings))
	for _, s := range d.Settings {
		value, ok := config[s.Name]
		if !ok || value == nil {
			if s.Default != nil {
				resolved[s.Name] = s.Default
			} else if s.Required {
				return nil, fmt.Errorf("required setting %q is not set", s.Name)
			}
			continue
		}
		if err := s.checkValue(value); err != nil {
			return nil, fmt.Errorf("setting %q: %w", s.Name, err)
		}
		resolved[s.Name] = value
	}
	return resolved, nil
}
