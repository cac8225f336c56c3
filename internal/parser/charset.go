package parser

import (
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps body so that it yields UTF-8 regardless of the charset
// declared in contentType (ISO-8859-1, Windows-1252, ...).
//
// Only an explicit charset parameter triggers conversion. JSON without one is
// UTF-8 by definition, and sniffing the first kilobyte would misdetect
// payloads whose first non-ASCII byte comes later.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	if contentType == "" {
		return body, nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	label, ok := params["charset"]
	if !ok || strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8") {
		return body, nil
	}
	return charset.NewReaderLabel(label, body)
}
