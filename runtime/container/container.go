//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package container provides an Executor that runs command transform
// logic inside a Docker container.
//
// The container runs unprivileged with no network access, so logic from
// untrusted community blocks cannot reach the host or the outside world.
// Scripts therefore return prompt artifacts; the provider call happens on
// the orchestrator side.
package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	archive "github.com/moby/go-archive"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/log"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
)

const (
	defaultImage      = "python:3.12-slim"
	defaultWorkingDir = "/workspace"
	defaultTimeout    = 60 * time.Second
)

// Executor runs command transform logic in a Docker container.
type Executor struct {
	host            string
	timeout         time.Duration
	client          *client.Client
	mu              sync.Mutex
	containerID     string
	containerName   string
	hostConfig      container.HostConfig
	containerConfig container.Config
}

// Option configures the Executor.
type Option func(*Executor)

// WithHost sets the base URL of a user-hosted Docker daemon. The default
// is taken from the environment.
func WithHost(host string) Option {
	return func(e *Executor) { e.host = host }
}

// WithImage sets the container image used for execution.
func WithImage(img string) Option {
	return func(e *Executor) { e.containerConfig.Image = img }
}

// WithTimeout sets the deadline for a single transform.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.timeout = timeout }
}

// WithContainerName names the created container. Empty autogenerates one.
func WithContainerName(name string) Option {
	return func(e *Executor) { e.containerName = name }
}

// New creates a container executor and connects to the Docker daemon. The
// container itself is created lazily on first use.
func New(opts ...Option) (*Executor, error) {
	e := &Executor{
		timeout: defaultTimeout,
		hostConfig: container.HostConfig{
			AutoRemove:  true,
			Privileged:  false,
			NetworkMode: "none",
		},
		containerConfig: container.Config{
			Image:      defaultImage,
			WorkingDir: defaultWorkingDir,
			Cmd:        []string{"tail", "-f", "/dev/null"},
			Tty:        true,
			OpenStdin:  true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	var err error
	if e.host != "" {
		e.client, err = client.NewClientWithOpts(client.WithHost(e.host), client.WithAPIVersionNegotiation())
	} else {
		e.client, err = client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	}
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return e, nil
}

// Kind implements runtime.Executor.
func (e *Executor) Kind() string {
	return block.LogicContainer
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

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.ensureContainer(ctx); err != nil {
		return fail(err)
	}

	execID := uuid.New().String()
	remoteDir := defaultWorkingDir + "/" + execID
	if err := e.copyWorkDir(ctx, def, input, remoteDir); err != nil {
		return fail(err)
	}

	args := e.commandArgs(remoteDir, def.LogicFile())
	if args == nil {
		return fail(fmt.Errorf("unsupported logic artifact %q", def.LogicFile()))
	}
	stdout, stderr, err := e.exec(ctx, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(runtime.ErrTimeout)
		}
		return fail(fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr)))
	}
	return runtime.ParseCommandOutput(def, stdout)
}

// copyWorkDir stages the logic artifact and the input payload into the
// container under a per-execution directory.
func (e *Executor) copyWorkDir(ctx context.Context, def *block.Definition, input runtime.Input, remoteDir string) error {
	hostDir, err := os.MkdirTemp("", "blockexec_container_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(hostDir)

	logic, err := os.ReadFile(filepath.Join(def.Dir, def.LogicFile()))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(hostDir, def.LogicFile()), logic, 0644); err != nil {
		return err
	}
	payload, err := runtime.MarshalCommandInput(input)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(hostDir, "input.json"), payload, 0644); err != nil {
		return err
	}

	tar, err := archive.TarWithOptions(hostDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("build work directory archive: %w", err)
	}
	defer tar.Close()

	mkdir := container.ExecOptions{Cmd: []string{"mkdir", "-p", remoteDir}}
	if _, _, err := e.execWith(ctx, mkdir); err != nil {
		return err
	}
	if err := e.client.CopyToContainer(ctx, e.containerID, remoteDir, tar, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("copy work directory: %w", err)
	}
	return nil
}

func (e *Executor) commandArgs(remoteDir, logicFile string) []string {
	script := remoteDir + "/" + logicFile
	var run string
	switch strings.ToLower(filepath.Ext(logicFile)) {
	case ".py":
		run = "python3 " + script
	case ".sh":
		run = "sh " + script
	default:
		return nil
	}
	return []string{"sh", "-c", run + " < " + remoteDir + "/input.json"}
}

func (e *Executor) exec(ctx context.Context, cmd []string) (stdout, stderr string, err error) {
	return e.execWith(ctx, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
}

func (e *Executor) execWith(ctx context.Context, opts container.ExecOptions) (string, string, error) {
	opts.AttachStdout = true
	opts.AttachStderr = true
	execResp, err := e.client.ContainerExecCreate(ctx, e.containerID, opts)
	if err != nil {
		return "", "", fmt.Errorf("create exec: %w", err)
	}
	hijacked, err := e.client.ContainerExecAttach(ctx, execResp.ID, container.ExecStartOptions{})
	if err != nil {
		return "", "", fmt.Errorf("attach to exec: %w", err)
	}
	defer hijacked.Close()

	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, hijacked.Reader); err != nil {
		return "", "", fmt.Errorf("read exec output: %w", err)
	}
	inspect, err := e.client.ContainerExecInspect(ctx, execResp.ID)
	if err != nil {
		return "", "", fmt.Errorf("inspect exec: %w", err)
	}
	if inspect.ExitCode != 0 {
		return stdout.String(), stderr.String(), fmt.Errorf("exit code %d", inspect.ExitCode)
	}
	return stdout.String(), stderr.String(), nil
}

// ensureContainer starts the execution container on first use.
func (e *Executor) ensureContainer(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.containerID != "" {
		return nil
	}
	if err := e.ensureImage(ctx); err != nil {
		return err
	}
	resp, err := e.client.ContainerCreate(ctx, &e.containerConfig, &e.hostConfig, nil, nil, e.containerName)
	if err != nil {
		return fmt.Errorf("create container: %w", err)
	}
	if err := e.client.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("start container: %w", err)
	}
	e.containerID = resp.ID
	log.Infof("container executor: container %s started", resp.ID)
	return nil
}

func (e *Executor) ensureImage(ctx context.Context) error {
	images, err := e.client.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == e.containerConfig.Image {
				return nil
			}
		}
	}
	reader, err := e.client.ImagePull(ctx, e.containerConfig.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %q: %w", e.containerConfig.Image, err)
	}
	defer reader.Close()
	_, err = io.Copy(io.Discard, reader)
	return err
}

// Close stops and removes the execution container.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.containerID != "" {
		if err := e.client.ContainerStop(ctx, e.containerID, container.StopOptions{}); err != nil {
			log.Warnf("container executor: stop container %s: %v", e.containerID, err)
		}
		e.containerID = ""
	}
	return e.client.Close()
}
