package client

import (
	"fmt"
	"mime"
	"strings"
)

// extensionsByMIMEType is the fixed MIME type to file extension table.
// Lookups never guess: a type missing here is an error.
var extensionsByMIMEType = map[string]string{
	"application/json":              ".json",
	"application/pdf":               ".pdf",
	"application/vnd.ms-excel":      ".xls",
	"application/vnd.ms-powerpoint": ".ppt",
	"application/x-mimearchive":     ".mht",
	"application/xml":               ".xml",

	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",

	"image/jpeg":                ".jpg",
	"image/png":                 ".png",
	"message/rfc822":            ".mht",
	"multipart/related":         ".mht",
	"text/csv":                  ".csv",
	"text/html":                 ".html",
	"text/plain":                ".txt",
	"text/tab-separated-values": ".tsv",
	"text/xml":                  ".xml",
}

// ExtensionForMIMEType returns the file extension (with leading dot) for a
// MIME type. Parameters such as charset are ignored.
func ExtensionForMIMEType(mimeType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		return "", fmt.Errorf("%w: malformed MIME type %q: %w", ErrValidation, mimeType, err)
	}
	ext, ok := extensionsByMIMEType[mediaType]
	if !ok {
		return "", fmt.Errorf("%w: no file extension for MIME type %q", ErrValidation, mediaType)
	}
	return ext, nil
}
