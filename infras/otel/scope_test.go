package otel_test

import (
	"errors"
	"testing"
	"time"

	"parkspot/infras/otel"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestAttribute(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  attribute.Value
	}{
		{name: "bool", value: true, want: attribute.BoolValue(true)},
		{name: "string", value: "PENDING", want: attribute.StringValue("PENDING")},
		{name: "int", value: 3, want: attribute.IntValue(3)},
		{name: "amount", value: int64(150000), want: attribute.Int64Value(150000)},
		{name: "ratio", value: 1.5, want: attribute.Float64Value(1.5)},
		{name: "roles", value: []string{"OWNER", "ADMIN"}, want: attribute.StringSliceValue([]string{"OWNER", "ADMIN"})},
		{name: "time", value: time.Date(2030, 1, 2, 8, 0, 0, 0, time.UTC), want: attribute.StringValue("2030-01-02T08:00:00Z")},
		{name: "duration", value: 90 * time.Minute, want: attribute.StringValue("1h30m0s")},
		{name: "error", value: errors.New("slot taken"), want: attribute.StringValue("slot taken")},
		{name: "fallback", value: struct{ A int }{A: 1}, want: attribute.StringValue("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := otel.Attribute("key", tt.value)

			assert.Equal(t, attribute.Key("key"), kv.Key)
			assert.Equal(t, tt.want, kv.Value)
		})
	}
}
