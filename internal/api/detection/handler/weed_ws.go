package detectionHandler

import (
	"context"
	"errors"
	"time"

	"greeny/internal/api/detection"
	"greeny/internal/entity"
	"greeny/internal/middleware"
	contextPkg "greeny/pkg/context"
	"greeny/pkg/response"
	"greeny/pkg/workerpool"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

const (
	maxReadTimeout = 60 * time.Second
	writeTimeout   = 10 * time.Second
)

// handleWeedWebSocket answers every binary frame with a WeedResult or a
// FrameError. Frames are processed one at a time per connection on the
// shared worker pool; closing the socket cancels a frame still waiting for
// a worker.
func (h *DetectionHandler) handleWeedWebSocket(c *websocket.Conn) {
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	logger := h.log.WithField("request_id", requestID)

	logger.Info("Weed detection WebSocket client connected")
	defer logger.Info("Weed detection WebSocket client disconnected")

	ctx, cancel := context.WithCancel(contextPkg.WithRequestID(context.Background(), requestID))
	defer cancel()

	c.SetPingHandler(func(data string) error {
		h.log.Debug("Received ping, sending pong")
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			h.log.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	for {
		if err := c.SetReadDeadline(time.Now().Add(maxReadTimeout)); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			break
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Weed WebSocket error: %v", err)
			} else {
				logger.Info("Weed WebSocket connection closed")
			}
			break
		}

		if messageType != websocket.BinaryMessage {
			logger.Warnf("Received unexpected message type: %d", messageType)
			continue
		}

		result, err := workerpool.Do(ctx, h.pool, func() (*entity.WeedResult, error) {
			return h.detectionService.ProcessWeedFrame(ctx, message)
		})

		var reply interface{} = result
		if err != nil {
			reply = frameError(err)
			status := response.StatusOf(err)
			entry := logger.WithFields(logrus.Fields{
				"error":  err.Error(),
				"status": status,
				"bytes":  len(message),
			})
			if status >= fiber.StatusInternalServerError {
				entry.Error("Error processing weed frame")
			} else {
				entry.Warn("Rejected weed frame")
			}
		}

		if err := h.writeFrame(c, reply); err != nil {
			logger.Errorf("Error writing JSON response: %v", err)
			break
		}
	}
}

func (h *DetectionHandler) writeFrame(c *websocket.Conn, v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := c.WriteJSON(v); err != nil {
		return err
	}
	return c.SetWriteDeadline(time.Time{})
}

func frameError(err error) detection.FrameError {
	if errors.Is(err, detection.ErrInvalidImage) {
		return detection.FrameError{Error: detection.DecodingFailedMessage}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		return detection.FrameError{Error: respErr.Error()}
	}
	return detection.FrameError{Error: detection.ErrProcessing.Error()}
}
