package parser

import "io"

// Parser defines a generic interface for decoding catalog payloads
type Parser[T any] interface {
	Parse(body io.Reader) ([]T, error)
}
