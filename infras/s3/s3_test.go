package s3_test

import (
	"testing"

	"parkspot/infras/s3"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	tests := []struct {
		domain, key, want string
	}{
		{domain: "https://cdn.parkspot.test", key: "spots/spot-1/a.jpg", want: "https://cdn.parkspot.test/spots/spot-1/a.jpg"},
		{domain: "https://cdn.parkspot.test/", key: "/verifications/v-1/doc.png", want: "https://cdn.parkspot.test/verifications/v-1/doc.png"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, s3.ObjectURL(tt.domain, tt.key))
		})
	}
}
