package detectionHandler

import (
	"time"

	contextPkg "greeny/pkg/context"
	"greeny/pkg/handlerUtil"
	"greeny/pkg/log"
	"greeny/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

const inferenceTimeout = 30 * time.Second

func (h *DetectionHandler) DetectQuality(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), inferenceTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	data, err := h.readUpload(ctx, requestID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_file")
	}

	res, err := h.detectionService.DetectQuality(c, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "detect_quality")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *DetectionHandler) ClassifyLeaf(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), inferenceTimeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	data, err := h.readUpload(ctx, requestID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_image_file")
	}

	res, err := h.detectionService.ClassifyLeaf(c, data)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "classify_leaf")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

// readUpload returns the bytes of the multipart "file" field.
func (h *DetectionHandler) readUpload(ctx *fiber.Ctx, requestID string) ([]byte, error) {
	file, err := ctx.FormFile("file")
	if err != nil {
		return nil, utils.ErrNoFile
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"file_name":  file.Filename,
		"file_size":  file.Size,
	}).Debug("Processing file upload")

	return h.utils.ReadImageFile(file)
}
