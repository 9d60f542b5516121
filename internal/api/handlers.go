package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docbot/internal/rag/pipeline"
	"docbot/internal/rag/service"
	"docbot/pkg/logger"
)

// API provides the HTTP handlers for document upload and question
// answering. It is a thin mapping onto the service; all pipeline logic
// lives below it.
type API struct {
	service *service.Service
	logger  *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(svc *service.Service, log *logger.Logger) *API {
	return &API{service: svc, logger: log}
}

// UploadHandler accepts a multipart batch of files and ingests them. The
// response always lists every submitted file's outcome; a partial failure
// is reported per file, never as an all-or-nothing error.
func (a *API) UploadHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one file is required"})
		return
	}

	files := make([]pipeline.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file " + fh.Filename})
			return
		}

		files = append(files, pipeline.UploadFile{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	report := a.service.Ingest(c.Request.Context(), files)
	c.JSON(http.StatusOK, report)
}

type askRequest struct {
	Question     string    `json:"question" binding:"required"`
	K            int       `json:"k"`
	Temperatures []float32 `json:"temperatures"`
}

// AskHandler answers one question with multiple candidates. The response
// contains as many candidates as could be produced; a failed generation
// call is reported on its own candidate.
func (a *API) AskHandler(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	result, err := a.service.Ask(c.Request.Context(), req.Question, req.K, req.Temperatures)
	if err != nil {
		a.logger.WithError(err).Error("Failed to answer question")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer question"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListDocumentsHandler lists the uploaded documents.
func (a *API) ListDocumentsHandler(c *gin.Context) {
	docs, err := a.service.Documents(c.Request.Context())
	if err != nil {
		a.logger.WithError(err).Error("Failed to list documents")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
