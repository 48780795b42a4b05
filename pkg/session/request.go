// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
)

// RequestKind tags a Request variant. Processors are registered and dispatched
// by kind, so every Request implementation must return a stable, unique kind.
type RequestKind string

// ResultType describes the shape of the result a caller expects from a request.
type ResultType string

const (
	ResultTypeResultSet ResultType = "ResultSet"
	ResultTypeInt32     ResultType = "int32"
)

// Request is anything that can be sent through a Session.
type Request interface {
	Kind() RequestKind
}

// RequestHandler executes a single request. Handlers are built for one
// execution and must not be reused.
type RequestHandler[T any] interface {
	Handle(ctx context.Context) (T, error)
}

// RequestProcessor turns requests of type R into handlers producing T.
type RequestProcessor[R Request, T any] interface {
	// CanProcess reports whether the processor handles req when the caller expects resultType.
	// Implementations must be free of side effects and safe for concurrent use.
	CanProcess(req Request, resultType ResultType) bool

	NewHandler(req R, s *Session, logPrefix string) (RequestHandler[T], error)
}

// RequestHandlerFunc adapts a function to RequestHandler.
type RequestHandlerFunc[T any] func(ctx context.Context) (T, error)

func (f RequestHandlerFunc[T]) Handle(ctx context.Context) (T, error) {
	return f(ctx)
}
