//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides an Executor that runs command transform logic as
// a local subprocess.
//
// The logic artifact is copied into a fresh temporary directory and run
// with a minimal environment, the input on stdin and a hard deadline.
// That bounds what the script can rely on, but it still shares the host:
// use the container executor for logic from untrusted community blocks.
package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/log"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
)

const defaultTimeout = 30 * time.Second

// Executor runs command transform logic in a local subprocess.
type Executor struct {
	timeout        time.Duration
	cleanTempFiles bool
}

// Option configures the Executor.
type Option func(*Executor)

// WithTimeout sets the deadline for a single transform.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		e.timeout = timeout
	}
}

// WithCleanTempFiles sets whether the temporary work directory is removed
// after execution.
func WithCleanTempFiles(clean bool) Option {
	return func(e *Executor) {
		e.cleanTempFiles = clean
	}
}

// New creates a local command executor.
func New(opts ...Option) *Executor {
	e := &Executor{
		timeout:        defaultTimeout,
		cleanTempFiles: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind implements runtime.Executor.
func (e *Executor) Kind() string {
	return block.LogicCommand
}

// Execute implements runtime.Executor.
func (e *Executor) Execute(
	ctx context.Context,
	def *block.Definition,
	input runtime.Input,
	caps runtime.Capabilities,
) (runtime.Result, error) {
	fail := func(err error) (runtime.Result, error) {
		return runtime.Result{}, &runtime.ExecutionError{BlockID: def.ID, Err: err}
	}

	workDir, err := os.MkdirTemp("", "blockexec_"+uuid.New().String())
	if err != nil {
		return fail(fmt.Errorf("create work directory: %w", err))
	}
	if e.cleanTempFiles {
		defer func() {
			if err := os.RemoveAll(workDir); err != nil {
				log.Warnf("failed to remove work directory %s: %v", workDir, err)
			}
		}()
	}

	logic, err := os.ReadFile(filepath.Join(def.Dir, def.LogicFile()))
	if err != nil {
		return fail(err)
	}
	scriptPath := filepath.Join(workDir, def.LogicFile())
	if err := os.WriteFile(scriptPath, logic, e.fileMode(def.LogicFile())); err != nil {
		return fail(fmt.Errorf("write logic artifact: %w", err))
	}

	stdin, err := runtime.MarshalCommandInput(input)
	if err != nil {
		return fail(err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := e.commandArgs(scriptPath)
	if len(args) == 0 {
		return fail(fmt.Errorf("unsupported logic artifact %q", def.LogicFile()))
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = workDir
	cmd.Env = []string{"PATH=" + os.Getenv("PATH")}
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(runtime.ErrTimeout)
		}
		return fail(fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())))
	}
	return runtime.ParseCommandOutput(def, stdout.String())
}

func (e *Executor) commandArgs(scriptPath string) []string {
	switch strings.ToLower(filepath.Ext(scriptPath)) {
	case ".py":
		return []string{"python3", scriptPath}
	case ".sh":
		return []string{"bash", scriptPath}
	case ".js":
		return []string{"node", scriptPath}
	default:
		return nil
	}
}

func (e *Executor) fileMode(name string) os.FileMode {
	if strings.ToLower(filepath.Ext(name)) == ".sh" {
		return 0755
	}
	return 0644
}
