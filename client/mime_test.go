package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionForMIMEType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"application/pdf", ".pdf"},
		{"application/vnd.ms-excel", ".xls"},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
		{"application/vnd.ms-powerpoint", ".ppt"},
		{"application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx"},
		{"text/csv", ".csv"},
		{"text/csv; charset=UTF-8", ".csv"},
		{"text/html", ".html"},
		{"text/plain", ".txt"},
		{"text/xml", ".xml"},
		{"application/xml", ".xml"},
		{"application/x-mimearchive", ".mht"},
		{"multipart/related; boundary=abc", ".mht"},
		{" Application/PDF ", ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			got, err := ExtensionForMIMEType(tt.mimeType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensionForMIMEType_Unknown(t *testing.T) {
	for _, mimeType := range []string{"application/x-unknown", "", "not a mime type"} {
		_, err := ExtensionForMIMEType(mimeType)
		assert.ErrorIs(t, err, ErrValidation, mimeType)
	}
}
