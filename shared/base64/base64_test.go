package base64_test

import (
	"testing"

	"parkspot/shared/base64"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContentType(t *testing.T) {
	tests := map[string]string{
		"data:image/png;base64,iVBORw0KGgo=": "image/png",
		"data:image/jpeg;base64,/9j/4AAQ":    "image/jpeg",
		"data:;base64,AAAA":                  "",
		"image/png;base64,AAAA":              "",
		"data:image/png,AAAA":                "",
		"":                                   "",
	}

	for in, want := range tests {
		assert.Equal(t, want, base64.GetContentType(in), in)
	}
}

func TestDecode(t *testing.T) {
	data, contentType, err := base64.Decode("data:image/webp;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", contentType)
	assert.Equal(t, []byte("hello"), data)

	_, _, err = base64.Decode("data:image/png;base64,***")
	assert.ErrorIs(t, err, base64.ErrInvalidDataURI)

	_, _, err = base64.Decode("plain text")
	assert.ErrorIs(t, err, base64.ErrInvalidDataURI)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", base64.Extension("image/jpeg"))
	assert.Equal(t, ".png", base64.Extension("image/png"))
	assert.Equal(t, "", base64.Extension("garbage"))
}
