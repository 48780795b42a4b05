// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"k8s.io/klog/v2"
)

var (
	ErrNoProcessor         = errors.New("no processor registered")
	ErrProcessorRegistered = errors.New("processor already registered")
	ErrUnexpectedResult    = errors.New("unexpected result type")
)

type registryKey struct {
	kind       RequestKind
	resultType ResultType
}

func (k registryKey) String() string {
	return fmt.Sprintf("%s/%s", k.kind, k.resultType)
}

// entry is the type-erased form of a RequestProcessor stored in the Registry.
type entry interface {
	canProcess(req Request, resultType ResultType) bool
	handle(ctx context.Context, req Request, s *Session, logPrefix string) (any, error)
}

type typedEntry[R Request, T any] struct {
	processor RequestProcessor[R, T]
}

func (e *typedEntry[R, T]) canProcess(req Request, resultType ResultType) bool {
	return e.processor.CanProcess(req, resultType)
}

func (e *typedEntry[R, T]) handle(ctx context.Context, req Request, s *Session, logPrefix string) (any, error) {
	// The registry key already matched the kind, so this only guards against
	// two request types sharing a kind.
	r, ok := req.(R)
	if !ok {
		var zero R
		return nil, fmt.Errorf("request of kind %q has type %T, expected %T", req.Kind(), req, zero)
	}

	h, err := e.processor.NewHandler(r, s, logPrefix)
	if err != nil {
		return nil, err
	}

	return h.Handle(ctx)
}

// Registry maps (RequestKind, ResultType) pairs to processors.
type Registry struct {
	lock    sync.RWMutex
	entries map[registryKey]entry
	metrics *Metrics
}

func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		entries: map[registryKey]entry{},
		metrics: metrics,
	}
}

// Register installs p as the processor for requests of the given kind when the
// caller expects resultType. sample is any request of that kind, used to
// verify that p accepts the declared pair.
func Register[R Request, T any](reg *Registry, sample R, resultType ResultType, p RequestProcessor[R, T]) error {
	key := registryKey{kind: sample.Kind(), resultType: resultType}

	if !p.CanProcess(sample, resultType) {
		return fmt.Errorf("processor %T doesn't accept %s", p, key)
	}

	reg.lock.Lock()
	defer reg.lock.Unlock()

	_, exists := reg.entries[key]
	if exists {
		return fmt.Errorf("can't register %T for %s: %w", p, key, ErrProcessorRegistered)
	}

	reg.entries[key] = &typedEntry[R, T]{processor: p}
	klog.V(4).InfoS("Registered request processor", "Kind", key.kind, "ResultType", key.resultType, "Processor", fmt.Sprintf("%T", p))

	return nil
}

func (reg *Registry) lookup(req Request, resultType ResultType) (entry, error) {
	key := registryKey{kind: req.Kind(), resultType: resultType}

	reg.lock.RLock()
	e, ok := reg.entries[key]
	reg.lock.RUnlock()

	if !ok || !e.canProcess(req, resultType) {
		return nil, fmt.Errorf("can't process %s: %w", key, ErrNoProcessor)
	}

	return e, nil
}

// Registered returns the registered pairs in a stable order.
func (reg *Registry) Registered() []string {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	res := make([]string, 0, len(reg.entries))
	for k := range reg.entries {
		res = append(res, k.String())
	}
	sort.Strings(res)

	return res
}

// Execute dispatches req to the processor registered for its kind and
// resultType and runs the resulting handler on the calling goroutine.
func Execute[T any](ctx context.Context, s *Session, req Request, resultType ResultType) (T, error) {
	var zero T

	if req == nil {
		return zero, fmt.Errorf("can't execute nil request: %w", ErrNoProcessor)
	}

	reg := s.Registry()
	e, err := reg.lookup(req, resultType)
	if err != nil {
		reg.metrics.observe(req.Kind(), resultType, outcomeUnsupported)
		return zero, err
	}

	res, err := e.handle(ctx, req, s, s.LogPrefix())
	if err != nil {
		reg.metrics.observe(req.Kind(), resultType, outcomeError)
		return zero, err
	}

	typed, ok := res.(T)
	if !ok {
		reg.metrics.observe(req.Kind(), resultType, outcomeError)
		return zero, fmt.Errorf("processor for %s returned %T, expected %T: %w", registryKey{req.Kind(), resultType}, res, zero, ErrUnexpectedResult)
	}

	reg.metrics.observe(req.Kind(), resultType, outcomeSuccess)

	return typed, nil
}
