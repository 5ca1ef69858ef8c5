//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package cos provides a DocumentStore backed by Tencent Cloud Object
// Storage. One object is stored per canvas document.
package cos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"

	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
	"trpc.group/trpc-go/trpc-canvas-go/log"
)

const defaultTimeout = 30 * time.Second

// Store stores canvas documents as COS objects under an optional key prefix.
type Store struct {
	client    *cos.Client
	keyPrefix string

	secretID  string
	secretKey string
	timeout   time.Duration
}

// Option configures the Store.
type Option func(*Store)

// WithSecretID sets the COS secret id.
func WithSecretID(secretID string) Option {
	return func(s *Store) { s.secretID = secretID }
}

// WithSecretKey sets the COS secret key.
func WithSecretKey(secretKey string) Option {
	return func(s *Store) { s.secretKey = secretKey }
}

// WithTimeout sets the HTTP timeout for COS requests.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Store) { s.timeout = timeout }
}

// WithKeyPrefix stores all documents under the given object key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keyPrefix = prefix }
}

// WithClient supplies a pre-built COS client, overriding the credential
// options.
func WithClient(client *cos.Client) Option {
	return func(s *Store) { s.client = client }
}

// New creates a COS-backed document store.
//
//	store, err := cos.New(
//	    "https://bucket.cos.region.myqcloud.com",
//	    cos.WithSecretID("your-secret-id"),
//	    cos.WithSecretKey("your-secret-key"),
//	)
func New(bucketURL string, opts ...Option) (*Store, error) {
	s := &Store{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		u, err := url.Parse(bucketURL)
		if err != nil {
			return nil, fmt.Errorf("parse bucket url: %w", err)
		}
		s.client = cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
			Timeout: s.timeout,
			Transport: &cos.AuthorizationTransport{
				SecretID:  s.secretID,
				SecretKey: s.secretKey,
			},
		})
	}
	return s, nil
}

// Read implements store.DocumentStore.
func (s *Store) Read(ctx context.Context, ref store.DocumentRef) (*canvas.Graph, error) {
	resp, err := s.client.Object.Get(ctx, s.key(ref), nil)
	if err != nil {
		if cos.IsNotFoundError(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("read canvas document %q: %w", ref, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read canvas document %q: %w", ref, err)
	}
	graph, err := store.Decode(data)
	if err != nil {
		log.Warnf("canvas document %q is malformed, treating as absent: %v", ref, err)
		return nil, store.ErrNotFound
	}
	return graph, nil
}

// Write implements store.DocumentStore. A COS object put is atomic on the
// service side: readers see either the previous or the new document.
func (s *Store) Write(ctx context.Context, ref store.DocumentRef, graph *canvas.Graph) error {
	data, err := store.Encode(graph)
	if err != nil {
		return err
	}
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: "application/json",
		},
	}
	if _, err := s.client.Object.Put(ctx, s.key(ref), bytes.NewReader(data), opt); err != nil {
		return fmt.Errorf("write canvas document %q: %w", ref, err)
	}
	return nil
}

func (s *Store) key(ref store.DocumentRef) string {
	if s.keyPrefix == "" {
		return ref
	}
	return s.keyPrefix + "/" + ref
}
