package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/telcwrite/telcwrite/internal/diff"
	"github.com/telcwrite/telcwrite/internal/document"
	"github.com/telcwrite/telcwrite/internal/document/repository"
	"github.com/telcwrite/telcwrite/internal/document/service"
	"github.com/telcwrite/telcwrite/internal/review"
	"github.com/telcwrite/telcwrite/pkg/logger"
)

// RegisterRoutes wires the document, content and review endpoints onto the
// engine.
func RegisterRoutes(r *gin.Engine, svc *service.Service, lc *review.Lifecycle) {
	r.GET("/api/documents", listDocuments(svc))
	r.POST("/api/documents", createDocument(svc))
	r.GET("/api/documents/:id", getDocument(svc))
	r.DELETE("/api/documents/:id", deleteDocument(svc))

	r.GET("/api/documents/:id/content", getContent(svc, lc))
	r.PATCH("/api/documents/:id/content", patchContent(svc))
	r.GET("/api/documents/:id/correction", getCorrection(svc))
	r.POST("/api/documents/:id/review", submitReview(svc, lc))
}

func listDocuments(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := svc.ListDocuments(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}

func createDocument(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		doc, err := svc.CreateDocument(c.Request.Context(), req.Title)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"document": doc})
	}
}

func getDocument(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := svc.GetDocument(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, doc)
	}
}

func deleteDocument(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getContent(svc *service.Service, lc *review.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := svc.GetContent(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"content": content,
			"state":   lc.StateOf(content).String(),
		})
	}
}

func patchContent(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch document.ContentPatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := svc.PatchContent(c.Request.Context(), c.Param("id"), patch); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// getCorrection returns the correction both raw (for the editable form) and
// rendered (annotated markup).
func getCorrection(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := svc.GetContent(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"raw":      content.Correction,
			"rendered": diff.RenderHTML(content.Correction),
		})
	}
}

func submitReview(svc *service.Service, lc *review.Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := svc.GetDocument(c.Request.Context(), id); err != nil {
			fail(c, err)
			return
		}
		rev, err := lc.Submit(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "feedback": rev})
	}
}

// fail maps domain errors onto transport statuses. Everything here is
// recoverable and carries an actionable message.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateTitle):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotReviewed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrNotEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, review.ErrService):
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to review content"})
	default:
		logger.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
