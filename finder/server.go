// Copyright 2025 The Refuge Authors
// SPDX-License-Identifier: Apache-2.0

package finder

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openrefuge/refuge/geocode"
)

// Server exposes the finder pipeline over HTTP.
type Server struct {
	finder *Finder
	addr   string
}

// NewServer builds a Server listening on addr.
func NewServer(finder *Finder, addr string) *Server {
	return &Server{
		finder: finder,
		addr:   addr,
	}
}

// Run registers the routes and blocks serving requests.
func (s *Server) Run() error {
	r := gin.Default()

	s.Register(r)

	return r.Run(s.addr)
}

// Register attaches the API routes to an existing engine.
func (s *Server) Register(r *gin.Engine) {
	r.GET("/api/resources/services", s.listServices)
	r.POST("/api/resources/search", s.search)
}

type serviceEntry struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
}

func (s *Server) listServices(ctx *gin.Context) {
	taxonomy := s.finder.Taxonomy()

	categories := taxonomy.Categories()
	entries := make([]serviceEntry, 0, len(categories))

	for _, c := range categories {
		entries = append(entries, serviceEntry{ID: c, Label: taxonomy.Label(c)})
	}

	ctx.JSON(http.StatusOK, gin.H{"services": entries})
}

type searchRequest struct {
	Location       string     `json:"location"`
	Services       []Category `json:"services"`
	UseLLM         bool       `json:"use_llm"`
	DeepExtraction bool       `json:"deep_extraction"`
	MinResults     int        `json:"min_results"`
	MaxResults     int        `json:"max_results"`
	MaxQueries     int        `json:"max_queries"`
}

func (s *Server) search(ctx *gin.Context) {
	var req searchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	response, err := s.finder.FindResources(ctx.Request.Context(), req.Location, req.Services, Options{
		UseExternalScoring:   req.UseLLM,
		EnableDeepExtraction: req.DeepExtraction,
		MinResults:           req.MinResults,
		MaxResults:           req.MaxResults,
		MaxQueries:           req.MaxQueries,
	})

	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, response)
	case errors.Is(err, ErrEmptyLocation), errors.Is(err, ErrNoCategories):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case geocode.IsExhausted(err):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "location could not be resolved"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
