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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/trpc-canvas-go/log"
)

// ManifestName is the manifest file every block directory must contain.
const ManifestName = "block.json"

// Registry indexes the blocks discovered under a root directory laid out
// as <root>/<category>/<name>/. Lookups run against an immutable
// snapshot; Reload swaps in a fresh snapshot atomically, so definitions
// already handed out are unaffected.
type Registry struct {
	root    string
	ignore  []string
	catalog atomic.Pointer[catalog]
}

type catalog struct {
	byID        map[string]*Definition
	diagnostics []string
}

// Option configures the Registry.
type Option func(*Registry)

// WithIgnorePatterns skips block directories whose root-relative path
// matches any of the given doublestar patterns.
func WithIgnorePatterns(patterns ...string) Option {
	return func(r *Registry) {
		r.ignore = append(r.ignore, patterns...)
	}
}

// New creates a registry rooted at the given directory. No scan is
// performed; call Scan, or Bootstrap to also seed the builtin blocks on a
// fresh installation.
func New(root string, opts ...Option) *Registry {
	r := &Registry{root: root}
	for _, opt := range opts {
		opt(r)
	}
	r.catalog.Store(&catalog{byID: map[string]*Definition{}})
	return r
}

// Root returns the registry's root directory.
func (r *Registry) Root() string {
	return r.root
}

// Get returns the definition with the given id.
func (r *Registry) Get(id string) (*Definition, bool) {
	def, ok := r.catalog.Load().byID[id]
	return def, ok
}

// List returns the known definitions, optionally filtered by category.
// The order is not meaningful; callers that need a stable display order
// should sort by id or name.
func (r *Registry) List(categories ...string) []*Definition {
	snapshot := r.catalog.Load()
	var defs []*Definition
	for _, def := range snapshot.byID {
		if len(categories) > 0 && !contains(categories, def.Category) {
			continue
		}
		defs = append(defs, def)
	}
	return defs
}

// Diagnostics returns the non-fatal problems encountered by the last scan.
func (r *Registry) Diagnostics() []string {
	return r.catalog.Load().diagnostics
}

// Scan walks the root directory and replaces the catalog with what it
// finds. Directories with a missing or invalid manifest, or a missing
// logic artifact, are skipped with a diagnostic. A duplicate id is an
// accepted override: the definition scanned last wins, with a warning.
func (r *Registry) Scan() error {
	matches, err := doublestar.Glob(os.DirFS(r.root), "*/*/"+ManifestName)
	if err != nil {
		return fmt.Errorf("scan block directory %q: %w", r.root, err)
	}
	sort.Strings(matches)

	next := &catalog{byID: make(map[string]*Definition, len(matches))}
	skip := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		next.diagnostics = append(next.diagnostics, msg)
		log.Warnf("block registry: %s", msg)
	}
	for _, manifest := range matches {
		dir := filepath.Dir(manifest)
		if r.ignored(dir) {
			continue
		}
		def, err := r.loadDefinition(dir)
		if err != nil {
			skip("skipping %q: %v", dir, err)
			continue
		}
		if prev, dup := next.byID[def.ID]; dup {
			log.Warnf("block registry: id %q in %q overrides %q", def.ID, def.Dir, prev.Dir)
		}
		next.byID[def.ID] = def
	}
	r.catalog.Store(next)
	log.Infof("block registry: %d blocks loaded from %q", len(next.byID), r.root)
	return nil
}

// Reload clears the index and re-runs the scan. Safe to call at any time;
// in-flight executions holding a definition keep using it.
func (r *Registry) Reload() error {
	return r.Scan()
}

func (r *Registry) loadDefinition(relDir string) (*Definition, error) {
	dir := filepath.Join(r.root, relDir)
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	def.Dir = dir
	def.Category = strings.SplitN(filepath.ToSlash(relDir), "/", 2)[0]
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if _, err := os.Stat(filepath.Join(dir, def.LogicFile())); err != nil {
		return nil, fmt.Errorf("logic artifact %q: %w", def.LogicFile(), err)
	}
	return &def, nil
}

func (r *Registry) ignored(relDir string) bool {
	for _, pattern := range r.ignore {
		if ok, _ := doublestar.Match(pattern, filepath.ToSlash(relDir)); ok {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
