package mocks

import (
	"context"

	"parkspot/infras/otel"
)

type otelImpl struct{}

// NewOtel returns a tracer that records nothing, for unit tests.
func NewOtel() otel.Otel {
	return otelImpl{}
}

func (otelImpl) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (otelImpl) Shutdown(context.Context) error {
	return nil
}
