package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// NewFavoriteNotFoundError creates a specific error for a show that is not favorited.
func NewFavoriteNotFoundError(showID int) *ErrNotFound {
	return &ErrNotFound{
		Resource: "favorite",
		ID:       showID,
	}
}

// NetworkError is returned when the remote catalog cannot be reached or answers
// with a non-success status. StatusCode is 0 for transport failures.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *NetworkError) Is(target error) bool {
	_, ok := target.(*NetworkError)
	return ok
}

// Temporary reports whether repeating the request may succeed.
func (e *NetworkError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode == 429 || e.StatusCode >= 500
}

// DecodeError is returned when a remote payload cannot be decoded.
type DecodeError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying decoding error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *DecodeError) Is(target error) bool {
	_, ok := target.(*DecodeError)
	return ok
}

// StorageError is returned when the local favorites store fails.
type StorageError struct {
	Op  string
	ID  int
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("storage %s (show %d): %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying storage engine error.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *StorageError) Is(target error) bool {
	_, ok := target.(*StorageError)
	return ok
}
