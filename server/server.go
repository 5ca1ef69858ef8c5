//
// Tencent is pleased to support the open source community by making trpc-canvas-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-canvas-go is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the canvas core over HTTP for host shells. It
// wraps graph CRUD, registry lookups and block runs; block runs can also
// be submitted asynchronously and polled by run id.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/cors"

	"trpc.group/trpc-go/trpc-canvas-go/block"
	"trpc.group/trpc-go/trpc-canvas-go/canvas"
	"trpc.group/trpc-go/trpc-canvas-go/canvas/store"
	"trpc.group/trpc-go/trpc-canvas-go/log"
	"trpc.group/trpc-go/trpc-canvas-go/provider"
	"trpc.group/trpc-go/trpc-canvas-go/reader"
	"trpc.group/trpc-go/trpc-canvas-go/runner"
	"trpc.group/trpc-go/trpc-canvas-go/runtime"
)

const defaultPoolSize = 8

// maxImportSize bounds uploaded documents to 32 MiB.
const maxImportSize = 32 << 20

// Core is the slice of the orchestrator the server needs. *runner.Runner
// implements it.
type Core interface {
	Graph(ctx context.Context, ref store.DocumentRef) (*canvas.Graph, error)
	CreateDocument(ctx context.Context, ref store.DocumentRef) error
	CreateNode(ctx context.Context, ref store.DocumentRef, node *canvas.Node, nearNodeID string) (string, error)
	CreateEdge(ctx context.Context, ref store.DocumentRef, from, to string, attrs *canvas.Edge) (string, error)
	UpdateNode(ctx context.Context, ref store.DocumentRef, nodeID string, update canvas.NodeUpdate) error
	DeleteNode(ctx context.Context, ref store.DocumentRef, nodeID string) error
	RunBlock(ctx context.Context, ref store.DocumentRef, nodeID string) (*runner.Outcome, error)
	Clarify(ctx context.Context, ref store.DocumentRef, selectedText, question string) (*runner.Outcome, error)
	Reset(ctx context.Context, ref store.DocumentRef, nodeID string) error
}

// Run statuses reported by the async run API.
const (
	runStatusPending  = "pending"
	runStatusComplete = "complete"
	runStatusError    = "error"
)

type runState struct {
	Status  string          `json:"status"`
	Outcome *runner.Outcome `json:"outcome,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Server is the HTTP surface over the canvas core.
type Server struct {
	core     Core
	registry *block.Registry
	readers  *reader.Registry
	router   *mux.Router
	pool     *ants.Pool
	runs     sync.Map // run id -> *runState
	poolSize int
}

// Option configures the Server.
type Option func(*Server)

// WithReaders enables the document import endpoint with the given reader
// registry.
func WithReaders(readers *reader.Registry) Option {
	return func(s *Server) { s.readers = readers }
}

// WithPoolSize sets the size of the async run worker pool.
func WithPoolSize(size int) Option {
	return func(s *Server) { s.poolSize = size }
}

// New creates the HTTP server.
func New(core Core, registry *block.Registry, opts ...Option) (*Server, error) {
	s := &Server{
		core:     core,
		registry: registry,
		router:   mux.NewRouter(),
		poolSize: defaultPoolSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create run pool: %w", err)
	}
	s.pool = pool

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s, nil
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the async run pool.
func (s *Server) Close() {
	s.pool.Release()
}

// Document refs are single path segments at this surface; nested
// directories are a host-side concern.
func (s *Server) registerRoutes() {
	// Block registry APIs.
	s.router.HandleFunc("/api/v1/blocks", s.handleListBlocks).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/blocks/reload", s.handleReloadBlocks).Methods(http.MethodPost)

	// Canvas document APIs.
	s.router.HandleFunc("/api/v1/documents/{doc}", s.handleCreateDocument).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/graph", s.handleGetGraph).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/documents/{doc}/nodes", s.handleCreateNode).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/nodes/{node}", s.handleUpdateNode).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/nodes/{node}", s.handleDeleteNode).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/v1/documents/{doc}/edges", s.handleCreateEdge).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/import", s.handleImport).Methods(http.MethodPost)

	// Run APIs.
	s.router.HandleFunc("/api/v1/documents/{doc}/nodes/{node}/run", s.handleRun).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/nodes/{node}/reset", s.handleReset).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/documents/{doc}/clarify", s.handleClarify).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/runs/{run}", s.handleGetRun).Methods(http.MethodGet)
}

// ---- Handlers -----------------------------------------------------------

func (s *Server) handleListBlocks(w http.ResponseWriter, r *http.Request) {
	var categories []string
	if category := r.URL.Query().Get("category"); category != "" {
		categories = append(categories, category)
	}
	defs := s.registry.List(categories...)
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	s.writeJSON(w, defs)
}

func (s *Server) handleReloadBlocks(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Reload(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]any{
		"blocks":      len(s.registry.List()),
		"diagnostics": s.registry.Diagnostics(),
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["doc"]
	if err := s.core.CreateDocument(r.Context(), ref); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"document": ref})
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	graph, err := s.core.Graph(r.Context(), mux.Vars(r)["doc"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, graph)
}

type createNodeRequest struct {
	Type   string         `json:"type"`
	Text   string         `json:"text"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Block  *canvas.Block  `json:"block"`
	Near   string         `json:"near"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleCreateNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	nodeType := req.Type
	if nodeType == "" {
		nodeType = canvas.NodeTypeText
	}
	node := &canvas.Node{
		Type:   nodeType,
		Text:   req.Text,
		X:      req.X,
		Y:      req.Y,
		Width:  req.Width,
		Height: req.Height,
		Block:  req.Block,
	}
	if node.Block != nil {
		if node.Block.Status == "" {
			node.Block.Status = canvas.StatusIdle
		}
		if node.Block.Config == nil {
			node.Block.Config = req.Config
		}
	}
	id, err := s.core.CreateNode(r.Context(), mux.Vars(r)["doc"], node, req.Near)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	var update canvas.NodeUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vars := mux.Vars(r)
	if err := s.core.UpdateNode(r.Context(), vars["doc"], vars["node"], update); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.core.DeleteNode(r.Context(), vars["doc"], vars["node"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createEdgeRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
	Color string `json:"color"`
}

func (s *Server) handleCreateEdge(w http.ResponseWriter, r *http.Request) {
	var req createEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := s.core.CreateEdge(r.Context(), mux.Vars(r)["doc"], req.From, req.To,
		&canvas.Edge{Label: req.Label, Color: req.Color})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"id": id})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ref, nodeID := vars["doc"], vars["node"]
	if r.URL.Query().Get("async") == "true" {
		s.submitRun(w, ref, nodeID)
		return
	}
	outcome, err := s.core.RunBlock(r.Context(), ref, nodeID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, outcome)
}

// submitRun queues the run on the worker pool and returns its id for
// polling. The run uses a background context: the HTTP request ends here
// but the run keeps going.
func (s *Server) submitRun(w http.ResponseWriter, ref store.DocumentRef, nodeID string) {
	runID := uuid.New().String()
	s.runs.Store(runID, &runState{Status: runStatusPending})
	err := s.pool.Submit(func() {
		outcome, err := s.core.RunBlock(context.Background(), ref, nodeID)
		if err != nil {
			s.runs.Store(runID, &runState{Status: runStatusError, Error: err.Error()})
			return
		}
		s.runs.Store(runID, &runState{Status: runStatusComplete, Outcome: outcome})
	})
	if err != nil {
		s.runs.Delete(runID)
		s.writeError(w, fmt.Errorf("submit run: %w", err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
	s.writeJSON(w, map[string]string{"runId": runID})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	state, ok := s.runs.Load(mux.Vars(r)["run"])
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.core.Reset(r.Context(), vars["doc"], vars["node"]); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type clarifyRequest struct {
	Text     string `json:"text"`
	Question string `json:"question"`
}

func (s *Server) handleClarify(w http.ResponseWriter, r *http.Request) {
	var req clarifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Text == "" || req.Question == "" {
		http.Error(w, "text and question are required", http.StatusBadRequest)
		return
	}
	outcome, err := s.core.Clarify(r.Context(), mux.Vars(r)["doc"], req.Text, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, outcome)
}

// handleImport extracts text from an uploaded document and creates a
// content node holding it.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if s.readers == nil {
		http.Error(w, "document import is not enabled", http.StatusNotImplemented)
		return
	}
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	docReader, err := s.readers.ForFile(header.Filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	text, err := docReader.ReadFromReader(header.Filename, file)
	if err != nil {
		s.writeError(w, fmt.Errorf("read %q: %w", header.Filename, err))
		return
	}
	id, err := s.core.CreateNode(r.Context(), mux.Vars(r)["doc"],
		&canvas.Node{Type: canvas.NodeTypeText, Text: text}, r.FormValue("near"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]string{"id": id})
}

// ---- Helpers ------------------------------------------------------------

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// writeError maps core errors to HTTP statuses and a JSON error envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var provErr *provider.Error
	var execErr *runtime.ExecutionError
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, canvas.ErrNodeNotFound),
		errors.Is(err, runner.ErrBlockNotFound):
		status = http.StatusNotFound
	case errors.Is(err, canvas.ErrEdgeEndpoint),
		errors.Is(err, runner.ErrNotABlock),
		errors.Is(err, runner.ErrNoInputText):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, runner.ErrAlreadyRunning):
		status = http.StatusConflict
	case errors.As(err, &provErr), errors.As(err, &execErr):
		status = http.StatusBadGateway
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
