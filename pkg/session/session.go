// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/scylla-request-processor/pkg/util/retry"
	"go.uber.org/atomic"
	"k8s.io/klog/v2"
)

var sessionCounter atomic.Int64

// Session is a CQL session that dispatches requests to registered processors.
type Session struct {
	cqlx               gocqlx.Session
	registry           *Registry
	statementProcessor *StatementProcessor
	logPrefix          string
}

type options struct {
	logPrefix  string
	registerer prometheus.Registerer
}

type Option func(*options)

// WithLogPrefix overrides the generated "s<N>" log prefix.
func WithLogPrefix(prefix string) Option {
	return func(o *options) {
		o.logPrefix = prefix
	}
}

// WithMetricsRegisterer registers dispatch metrics with r. Several sessions
// can share r; their series carry the session log prefix as a label.
func WithMetricsRegisterer(r prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = r
	}
}

// NewSession connects to the cluster described by cfg. Connection attempts are
// retried according to cfg.Connect until ctx is done.
func NewSession(ctx context.Context, cfg *Config, opts ...Option) (*Session, error) {
	o := applyOptions(opts)

	clusterConfig, err := cfg.ClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("can't build cluster config: %w", err)
	}

	var cqlxSession gocqlx.Session
	attempts := 0
	op := func() error {
		attempts++

		s, err := gocqlx.WrapSession(clusterConfig.CreateSession())
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}

		cqlxSession = s
		return nil
	}
	notify := func(err error, wait time.Duration) {
		klog.InfoS("Can't create CQL session, retrying", "Hosts", strings.Join(clusterConfig.Hosts, ", "), "Wait", wait, "Error", err)
	}

	klog.V(2).InfoS("Creating CQL session", "Hosts", strings.Join(clusterConfig.Hosts, ", "), "Keyspace", clusterConfig.Keyspace)
	err = retry.WithNotify(ctx, op, cfg.connectBackoff(), notify)
	if err != nil {
		return nil, fmt.Errorf("can't create CQL session after %d attempts: %w", attempts, err)
	}

	s, err := wrap(cqlxSession, o)
	if err != nil {
		cqlxSession.Close()
		return nil, err
	}

	return s, nil
}

// Wrap builds a Session on top of an existing gocqlx session.
func Wrap(cqlxSession gocqlx.Session, opts ...Option) (*Session, error) {
	return wrap(cqlxSession, applyOptions(opts))
}

func applyOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func wrap(cqlxSession gocqlx.Session, o *options) (*Session, error) {
	logPrefix := o.logPrefix
	if len(logPrefix) == 0 {
		logPrefix = fmt.Sprintf("s%d", sessionCounter.Inc()-1)
	}

	var metrics *Metrics
	if o.registerer != nil {
		var err error
		metrics, err = NewMetrics(o.registerer, logPrefix)
		if err != nil {
			return nil, fmt.Errorf("can't register session metrics: %w", err)
		}
	}

	s := &Session{
		cqlx:               cqlxSession,
		registry:           NewRegistry(metrics),
		statementProcessor: NewStatementProcessor(),
		logPrefix:          logPrefix,
	}

	err := Register[*Statement, *ResultSet](s.registry, &Statement{}, ResultTypeResultSet, s.statementProcessor)
	if err != nil {
		return nil, fmt.Errorf("can't register statement processor: %w", err)
	}

	return s, nil
}

func (s *Session) Registry() *Registry {
	return s.registry
}

// StatementProcessor returns the built-in processor other processors can delegate to.
func (s *Session) StatementProcessor() *StatementProcessor {
	return s.statementProcessor
}

func (s *Session) LogPrefix() string {
	return s.logPrefix
}

// CQLX exposes the underlying gocqlx session.
func (s *Session) CQLX() *gocqlx.Session {
	return &s.cqlx
}

// ExecuteStatement runs stmt through the registered statement processor.
func (s *Session) ExecuteStatement(ctx context.Context, stmt *Statement) (*ResultSet, error) {
	return Execute[*ResultSet](ctx, s, stmt, ResultTypeResultSet)
}

func (s *Session) Close() {
	if s.cqlx.Session != nil {
		s.cqlx.Close()
	}
}
