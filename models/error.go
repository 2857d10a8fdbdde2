package models

// HealthCheckResponse is the body of GET /health
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// StatusResponse is the generic {success, message} envelope the original
// dashboard clients expect on mutation and auth endpoints
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
