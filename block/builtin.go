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
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"trpc.group/trpc-go/trpc-canvas-go/log"
)

//go:embed all:builtin
var builtinFS embed.FS

// Bootstrap seeds the builtin blocks when the root directory is entirely
// absent, then scans. When the root directory already exists nothing is
// written, so user-modified blocks are never overwritten.
func (r *Registry) Bootstrap() error {
	if _, err := os.Stat(r.root); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("stat block directory %q: %w", r.root, err)
		}
		if err := r.seed(); err != nil {
			return err
		}
	}
	return r.Scan()
}

func (r *Registry) seed() error {
	log.Infof("block registry: seeding builtin blocks into %q", r.root)
	return fs.WalkDir(builtinFS, "builtin", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("builtin", path)
		if err != nil {
			return err
		}
		target := filepath.Join(r.root, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := builtinFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read builtin %q: %w", path, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return fmt.Errorf("seed builtin %q: %w", target, err)
		}
		return nil
	})
}
