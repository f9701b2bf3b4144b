// Package lifecycle implements the pending/fulfilled/rejected convention every
// store follows for its asynchronous operations.
package lifecycle

// Status is the per-store operation status.
type Status struct {
	Loading      bool   `json:"isLoading"`
	Success      bool   `json:"isSuccess"`
	Error        bool   `json:"isError"`
	ErrorMessage string `json:"errorMessage"`
	ErrorCode    string `json:"errorCode"`
}

// Snapshot is an immutable view of a store.
type Snapshot[T any] struct {
	Status
	Data T `json:"data"`
}
