package types

import "encoding/json"

// Envelope is the body shape most backend endpoints answer with.
type Envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Error      *APIError       `json:"error,omitempty"`
	Pagination json.RawMessage `json:"pagination,omitempty"`
}

type APIError struct {
	Code    string          `json:"code"`
	Message string          `json:"message,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

// ListPayload is the nested list+pagination variant some endpoints wrap in data.
type ListPayload[T any] struct {
	Items      []T             `json:"items"`
	Pagination json.RawMessage `json:"pagination,omitempty"`
}
