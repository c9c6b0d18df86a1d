package detection

import (
	"net/http"

	"greeny/pkg/response"
)

// DecodingFailedMessage is sent on the weed stream for frames that are not
// images; the stream stays open.
const DecodingFailedMessage = "Decoding failed"

var (
	ErrInvalidImage   = response.NewError(http.StatusBadRequest, "invalid image")
	ErrModelNotLoaded = response.NewError(http.StatusServiceUnavailable, "model not loaded")
	ErrProcessing     = response.NewError(http.StatusInternalServerError, "error processing the image")
)
