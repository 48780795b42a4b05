// Copyright (C) 2026 ScyllaDB

// Package keyrequest provides a request processor that looks up a single
// integer value by key, delegating the query itself to the session's
// statement processor.
package keyrequest

import (
	"context"
	"errors"
	"math"

	"github.com/scylladb/scylla-request-processor/pkg/session"
	"go.uber.org/atomic"
	"k8s.io/klog/v2"
)

const (
	KeyRequestKind session.RequestKind = "KeyRequest"

	// Key is the partition key all lookup rows live under.
	Key = "test"

	// NoUniqueRow is returned when the lookup matched zero or more than one row.
	// The two cases are indistinguishable to the caller.
	NoUniqueRow int32 = math.MinInt32

	lookupQuery = "select v1 from test where k = ? and v0 = ?"
	valueColumn = "v1"
)

var (
	ErrHandlerAlreadyUsed = errors.New("key request handler has already been used")
	ErrNoResultSet        = errors.New("statement handler returned no result set")
)

// KeyRequest looks up the value stored for a clustering key.
type KeyRequest struct {
	key int32
}

var _ session.Request = KeyRequest{}

func NewKeyRequest(key int32) KeyRequest {
	return KeyRequest{key: key}
}

func (r KeyRequest) Key() int32 {
	return r.key
}

func (KeyRequest) Kind() session.RequestKind {
	return KeyRequestKind
}

type statementProcessor = session.RequestProcessor[*session.Statement, *session.ResultSet]

// KeyRequestProcessor turns a KeyRequest into a statement handled by subProcessor.
type KeyRequestProcessor struct {
	subProcessor statementProcessor
}

var _ session.RequestProcessor[KeyRequest, int32] = &KeyRequestProcessor{}

func NewKeyRequestProcessor(subProcessor statementProcessor) *KeyRequestProcessor {
	return &KeyRequestProcessor{
		subProcessor: subProcessor,
	}
}

func (p *KeyRequestProcessor) CanProcess(req session.Request, resultType session.ResultType) bool {
	return req != nil && req.Kind() == KeyRequestKind && resultType == session.ResultTypeInt32
}

func (p *KeyRequestProcessor) NewHandler(req KeyRequest, s *session.Session, logPrefix string) (session.RequestHandler[int32], error) {
	stmt := session.NewStatement(lookupQuery, Key, req.Key())

	subHandler, err := p.subProcessor.NewHandler(stmt, s, logPrefix)
	if err != nil {
		return nil, err
	}

	return NewKeyRequestHandler(subHandler, logPrefix), nil
}

// KeyRequestHandler runs the delegated lookup once and extracts the value.
type KeyRequestHandler struct {
	subHandler session.RequestHandler[*session.ResultSet]
	logPrefix  string
	used       atomic.Bool
}

var _ session.RequestHandler[int32] = &KeyRequestHandler{}

func NewKeyRequestHandler(subHandler session.RequestHandler[*session.ResultSet], logPrefix string) *KeyRequestHandler {
	return &KeyRequestHandler{
		subHandler: subHandler,
		logPrefix:  logPrefix,
	}
}

// Handle blocks until the delegate returns. Errors from the delegate are
// returned unchanged.
func (h *KeyRequestHandler) Handle(ctx context.Context) (int32, error) {
	if h.used.Swap(true) {
		return 0, ErrHandlerAlreadyUsed
	}

	rs, err := h.subHandler.Handle(ctx)
	if err != nil {
		return 0, err
	}
	if rs == nil {
		return 0, ErrNoResultSet
	}

	available := rs.AvailableWithoutFetching()
	if available != 1 {
		klog.V(4).InfoS("Lookup didn't match a unique row", "Session", h.logPrefix, "Rows", available)
		return NoUniqueRow, nil
	}

	row, _ := rs.One()
	return row.GetInt(valueColumn)
}

// Register installs a KeyRequestProcessor delegating to subProcessor into s.
func Register(s *session.Session, subProcessor statementProcessor) error {
	return session.Register[KeyRequest, int32](s.Registry(), KeyRequest{}, session.ResultTypeInt32, NewKeyRequestProcessor(subProcessor))
}

// Lookup executes a KeyRequest for key through s.
func Lookup(ctx context.Context, s *session.Session, key int32) (int32, error) {
	return session.Execute[int32](ctx, s, NewKeyRequest(key), session.ResultTypeInt32)
}
