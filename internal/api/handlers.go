package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yubota24504/FileVizDedup/internal/domain"
	"github.com/yubota24504/FileVizDedup/internal/services"
)

const skippedHeader = "X-Skipped-Entries"

type pathRequest struct {
	Path string `json:"path" binding:"required"`
}

type explainRequest struct {
	Path      string `json:"path" binding:"required"`
	Lang      string `json:"lang"`
	MaxGroups int    `json:"max_groups"`
}

type deleteRequest struct {
	Files []string `json:"files"`
}

type deleteFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

type deleteResponse struct {
	Deleted []string        `json:"deleted"`
	Errors  []deleteFailure `json:"errors"`
	Count   int             `json:"count"`
}

type explainResponse struct {
	Groups []domain.ExplainedGroup `json:"groups"`
}

func (server *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (server *Server) scan(c *gin.Context) {
	root, ok := server.bindRoot(c)
	if !ok {
		return
	}
	result, err := server.deps.Scanner.Scan(c.Request.Context(), services.ScanRequest{RootPath: root})
	if err != nil {
		server.fail(c, err)
		return
	}
	c.Header(skippedHeader, strconv.Itoa(len(result.Skipped)))
	c.JSON(http.StatusOK, result.Root)
}

func (server *Server) duplicates(c *gin.Context) {
	root, ok := server.bindRoot(c)
	if !ok {
		return
	}
	result, err := server.deps.Finder.Find(c.Request.Context(), services.DuplicateRequest{RootPath: root})
	if err != nil {
		server.fail(c, err)
		return
	}
	groups := result.Groups
	if groups == nil {
		groups = []domain.DuplicateGroup{}
	}
	c.Header(skippedHeader, strconv.Itoa(len(result.Skipped)))
	c.JSON(http.StatusOK, groups)
}

func (server *Server) explain(c *gin.Context) {
	var request explainRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request payload"})
		return
	}
	root, ok := server.validate(c, request.Path)
	if !ok {
		return
	}
	result, err := server.deps.Explainer.Explain(c.Request.Context(), services.ExplainRequest{
		RootPath:  root,
		Lang:      request.Lang,
		MaxGroups: request.MaxGroups,
	})
	if err != nil {
		server.fail(c, err)
		return
	}
	groups := result.Groups
	if groups == nil {
		groups = []domain.ExplainedGroup{}
	}
	c.JSON(http.StatusOK, explainResponse{Groups: groups})
}

func (server *Server) delete(c *gin.Context) {
	var request deleteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request payload"})
		return
	}
	if len(request.Files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No files specified"})
		return
	}
	result, err := server.deps.Actions.Delete(c.Request.Context(), services.DeleteRequest{
		Paths:    request.Files,
		SafeMode: server.options.SafeMode,
	})
	if err != nil {
		server.fail(c, err)
		return
	}

	response := deleteResponse{Deleted: result.Deleted, Errors: []deleteFailure{}, Count: result.Count}
	if response.Deleted == nil {
		response.Deleted = []string{}
	}
	for _, failure := range result.Errors {
		response.Errors = append(response.Errors, deleteFailure{File: failure.Path, Error: failure.Reason})
	}
	c.JSON(http.StatusOK, response)
}

func (server *Server) bindRoot(c *gin.Context) (string, bool) {
	var request pathRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request payload"})
		return "", false
	}
	return server.validate(c, request.Path)
}

// validate rejects a missing or non-directory root before any core work.
func (server *Server) validate(c *gin.Context, path string) (string, bool) {
	root, err := server.deps.Validator.ValidateRoot(path)
	if err != nil {
		server.fail(c, err)
		return "", false
	}
	return root, true
}

func (server *Server) fail(c *gin.Context, err error) {
	status, detail := http.StatusInternalServerError, "Internal error"
	switch {
	case errors.Is(err, services.ErrPathNotFound):
		status, detail = http.StatusBadRequest, "Path does not exist"
	case errors.Is(err, services.ErrNotDirectory):
		status, detail = http.StatusBadRequest, "Path is not a directory"
	case errors.Is(err, services.ErrNoPaths):
		status, detail = http.StatusBadRequest, "No files specified"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, detail = http.StatusServiceUnavailable, "Request cancelled"
	}
	if status >= http.StatusInternalServerError {
		server.logger.Error().Err(err).Str(requestIDKey, c.GetString(requestIDKey)).Msg("request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
