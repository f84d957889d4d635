package handler

import (
	"bufio"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	appfulfillment "github.com/shopdesk/backend/internal/application/fulfillment"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
)

// transferImageField is the multipart field carrying the upload
const transferImageField = "file"

// UploadHandler stages payment transfer proof images
type UploadHandler struct {
	BaseHandler
	images  appfulfillment.TransferImageStore
	maxSize int64
}

// NewUploadHandler creates a new UploadHandler. maxSize caps the multipart body.
func NewUploadHandler(images appfulfillment.TransferImageStore, maxSize int64) *UploadHandler {
	return &UploadHandler{images: images, maxSize: maxSize}
}

// RegisterRoutes registers the upload routes on the API group
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/transfer-images", h.UploadTransferImage)
}

// UploadTransferImage godoc
// @Summary      Stage a payment transfer proof image
// @Description  The returned key is passed as transfer_image when updating the order
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Transfer image (jpeg, png, webp, gif)"
// @Success      201  {object}  dto.Response
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Router       /uploads/transfer-images [post]
func (h *UploadHandler) UploadTransferImage(c *gin.Context) {
	if h.maxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize)
	}

	header, err := c.FormFile(transferImageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Transfer image exceeds the upload limit")
			return
		}
		h.BadRequest(c, "Multipart field \"file\" is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	body := bufio.NewReader(file)
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		sniff, _ := body.Peek(512)
		contentType = http.DetectContentType(sniff)
	}

	key, err := h.images.Stage(c.Request.Context(), header.Filename, contentType, body)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.UploadResponse{Key: key})
}
