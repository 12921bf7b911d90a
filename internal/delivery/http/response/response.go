package response

type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports each dependency as "healthy" or "unhealthy".
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
