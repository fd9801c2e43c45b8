package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/telemetry"
	"github.com/puffbuddy/backend/internal/util"
	"go.uber.org/zap"
)

// GenerateUploadURL returns a presigned PUT URL for a direct image upload
// POST /api/v1/uploads/url
func (h *Handlers) GenerateUploadURL(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	if h.images == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("Image storage"))
		return
	}

	var req struct {
		ContentType string `json:"content_type"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			util.RespondBindError(c, err)
			return
		}
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}
	if !util.IsImageContentType(req.ContentType) {
		util.RespondValidationError(c, "content_type", "Please select an image file")
		return
	}

	ctx, span := telemetry.TraceStorageCall(c.Request.Context(), "presign_upload", "")
	defer span.End()

	upload, err := h.images.PresignUpload(ctx, userID, req.ContentType)
	if err != nil {
		telemetry.RecordServiceError(span, "s3", err)
		metrics.App().ImageUploads.WithLabelValues("failed").Inc()
		util.RespondInternalError(c, "Failed to create upload URL", err)
		return
	}
	telemetry.RecordServiceSuccess(span, 1)

	c.JSON(http.StatusOK, upload)
}

// UploadImage accepts a multipart image and stores it server-side
// POST /api/v1/uploads/image
func (h *Handlers) UploadImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	if h.images == nil {
		util.RespondWithAPIError(c, apierrors.ServiceUnavailable("Image storage"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, util.MaxImageBytes+1<<20)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondValidationError(c, "image", "An image file is required")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if err := util.ValidateImageUpload(fileHeader.Filename, contentType, fileHeader.Size); err != nil {
		metrics.App().ImageUploads.WithLabelValues("rejected").Inc()
		if fileHeader.Size > util.MaxImageBytes {
			util.RespondWithAPIError(c, apierrors.PayloadTooLarge(err.Error()))
			return
		}
		util.RespondValidationError(c, "image", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "Failed to read upload", err)
		return
	}
	defer file.Close()

	ctx, span := telemetry.TraceStorageCall(c.Request.Context(), "put_object", "")
	defer span.End()

	result, err := h.images.UploadImage(ctx, file, fileHeader.Size, userID, fileHeader.Filename, contentType)
	if err != nil {
		telemetry.RecordServiceError(span, "s3", err)
		metrics.App().ImageUploads.WithLabelValues("failed").Inc()
		util.RespondInternalError(c, "Failed to upload image", err)
		return
	}
	telemetry.RecordServiceSuccess(span, 1)
	metrics.App().ImageUploads.WithLabelValues("stored").Inc()

	logger.Log.Debug("Image uploaded",
		logger.WithUserID(userID),
		zap.String("key", result.Key),
		zap.Int64("size", result.Size))

	c.JSON(http.StatusCreated, result)
}
