//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package settings provides the key-value settings store the host hands
// to the core: the active provider/model selection and saved prompt
// entries live here. No schema is enforced beyond what callers impose.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys used by the core. Hosts may store anything else alongside them.
const (
	KeyProvider     = "provider"
	KeyModel        = "model"
	KeySavedPrompts = "savedPrompts"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("setting not found")

// Store is a simple durable key-value map of scalar and small-object
// values.
type Store interface {
	// Get decodes the value for key into out.
	Get(ctx context.Context, key string, out any) error
	// Set stores the value for key.
	Set(ctx context.Context, key string, value any) error
	// Delete removes the value for key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error
}

// FileStore keeps all settings in one JSON file.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]json.RawMessage
}

// NewFileStore creates a settings store persisted at the given path. The
// file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, values: map[string]json.RawMessage{}}
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	raw, ok := s.values[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return json.Unmarshal(raw, out)
}

// Set implements Store.
func (s *FileStore) Set(ctx context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	s.values[key] = raw
	return s.flush()
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}

func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	s.loaded = true
	return nil
}

func (s *FileStore) flush() error {
	data, err := json.MarshalIndent(s.values, "", "\t")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
