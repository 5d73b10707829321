package remotes

import "github.com/google/uuid"

const SpanHeader = "X-Mts-Span"

type ProcessInfo struct {
	Process string `json:"process"`
}

type ComponentInfo struct {
	Name     string   `json:"name"`
	Provided []string `json:"provided"`
	Required []string `json:"required"`
}

type RegisteredInfo struct {
	Registered bool `json:"registered"`
}

type AllocateRequest struct {
	ClientProcess string `json:"client_process"`
	Consumer      string `json:"consumer"`
	Required      string `json:"required"`
	Component     string `json:"component"`
	Provided      string `json:"provided"`
}

type AllocateResponse struct {
	ID uuid.UUID `json:"id"`
}

type NotifyRequest struct {
	IsProvider bool      `json:"is_provider"`
	Success    bool      `json:"success"`
	ID         uuid.UUID `json:"id"`
	Consumer   string    `json:"consumer"`
	Required   string    `json:"required"`
	Provider   string    `json:"provider"`
	Provided   string    `json:"provided"`
}

type errorBody struct {
	Error string `json:"error"`
}
