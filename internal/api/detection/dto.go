package detection

// FrameError is the reply for a stream frame that could not be processed.
type FrameError struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string          `json:"status"`
	Models map[string]bool `json:"models"`
}
