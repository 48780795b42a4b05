// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/scylladb/go-set/strset"
	"github.com/scylladb/scylla-request-processor/pkg/util/retry"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	apimachineryutilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

// Config holds the settings used to connect a Session.
type Config struct {
	// Hosts are the initial contact points. Duplicates are ignored.
	Hosts []string `json:"hosts"`

	// Keyspace the session is bound to. Unqualified table names resolve against it.
	// +optional
	Keyspace string `json:"keyspace,omitempty"`

	// Consistency is the default consistency, e.g. "LOCAL_QUORUM".
	// +optional
	Consistency string `json:"consistency,omitempty"`

	// LocalDC enables DC-aware host selection.
	// +optional
	LocalDC string `json:"localDC,omitempty"`

	// +optional
	Username string `json:"username,omitempty"`
	// +optional
	Password string `json:"password,omitempty"`

	Timeout        metav1.Duration `json:"timeout"`
	ConnectTimeout metav1.Duration `json:"connectTimeout"`

	// QueryRetries is handed to gocql's SimpleRetryPolicy.
	QueryRetries int `json:"queryRetries"`

	// Connect controls retries of the initial connection.
	Connect ConnectBackoff `json:"connect"`
}

type ConnectBackoff struct {
	MaxRetries uint64          `json:"maxRetries"`
	WaitMin    metav1.Duration `json:"waitMin"`
	WaitMax    metav1.Duration `json:"waitMax"`
	Multiplier float64         `json:"multiplier"`
	Jitter     float64         `json:"jitter"`
}

func DefaultConfig() *Config {
	return &Config{
		Consistency:    gocql.LocalQuorum.String(),
		Timeout:        metav1.Duration{Duration: 3 * time.Second},
		ConnectTimeout: metav1.Duration{Duration: 3 * time.Second},
		QueryRetries:   1,
		Connect: ConnectBackoff{
			MaxRetries: 5,
			WaitMin:    metav1.Duration{Duration: 500 * time.Millisecond},
			WaitMax:    metav1.Duration{Duration: 5 * time.Second},
			Multiplier: 2,
			Jitter:     0.2,
		},
	}
}

// LoadConfigFile reads a YAML config on top of DefaultConfig.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	err = yaml.UnmarshalStrict(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("can't decode config file %q: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if len(c.Hosts) == 0 {
		errs = append(errs, errors.New("at least one host is required"))
	}

	for i, h := range c.Hosts {
		if len(h) == 0 {
			errs = append(errs, fmt.Errorf("hosts[%d] can't be empty", i))
		}
	}

	if len(c.Consistency) != 0 {
		_, err := gocql.ParseConsistencyWrapper(c.Consistency)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid consistency %q: %w", c.Consistency, err))
		}
	}

	if c.Timeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("timeout (%v) can't be negative", c.Timeout.Duration))
	}

	if c.ConnectTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("connect timeout (%v) can't be negative", c.ConnectTimeout.Duration))
	}

	if c.QueryRetries < 0 {
		errs = append(errs, fmt.Errorf("query retries (%d) can't be negative", c.QueryRetries))
	}

	if c.Connect.WaitMax.Duration < c.Connect.WaitMin.Duration {
		errs = append(errs, fmt.Errorf(
			"connect max wait (%v) can't be lower than connect min wait (%v)",
			c.Connect.WaitMax.Duration,
			c.Connect.WaitMin.Duration,
		))
	}

	if c.Connect.Multiplier < 1 {
		errs = append(errs, fmt.Errorf("connect backoff multiplier (%v) has to be at least 1", c.Connect.Multiplier))
	}

	if c.Connect.Jitter < 0 || c.Connect.Jitter > 1 {
		errs = append(errs, fmt.Errorf("connect backoff jitter (%v) has to be in range [0, 1]", c.Connect.Jitter))
	}

	return apimachineryutilerrors.NewAggregate(errs)
}

func (c *Config) uniqueHosts() []string {
	hosts := strset.New(c.Hosts...).List()
	sort.Strings(hosts)
	return hosts
}

// ClusterConfig translates c into a gocql cluster config.
func (c *Config) ClusterConfig() (*gocql.ClusterConfig, error) {
	clusterConfig := gocql.NewCluster(c.uniqueHosts()...)
	clusterConfig.Keyspace = c.Keyspace

	if c.Timeout.Duration > 0 {
		clusterConfig.Timeout = c.Timeout.Duration
	}
	if c.ConnectTimeout.Duration > 0 {
		clusterConfig.ConnectTimeout = c.ConnectTimeout.Duration
	}
	// Set a small reconnect interval to avoid flakes, if not reconnected in time.
	clusterConfig.ReconnectInterval = 500 * time.Millisecond

	if len(c.Consistency) != 0 {
		consistency, err := gocql.ParseConsistencyWrapper(c.Consistency)
		if err != nil {
			return nil, fmt.Errorf("can't parse consistency %q: %w", c.Consistency, err)
		}
		clusterConfig.Consistency = consistency
	}

	if len(c.LocalDC) != 0 {
		clusterConfig.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.DCAwareRoundRobinPolicy(c.LocalDC))
	} else {
		clusterConfig.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	}

	if len(c.Username) != 0 {
		clusterConfig.Authenticator = gocql.PasswordAuthenticator{
			Username: c.Username,
			Password: c.Password,
		}
	}

	clusterConfig.RetryPolicy = &gocql.SimpleRetryPolicy{NumRetries: c.QueryRetries}
	clusterConfig.QueryObserver = failedQueryObserver{}

	return clusterConfig, nil
}

func (c *Config) connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(retry.NewExponentialBackoff(
		c.Connect.WaitMin.Duration,
		0,
		c.Connect.WaitMax.Duration,
		c.Connect.Multiplier,
		c.Connect.Jitter,
	), c.Connect.MaxRetries)
}

type failedQueryObserver struct{}

func (failedQueryObserver) ObserveQuery(_ context.Context, oq gocql.ObservedQuery) {
	if oq.Err != nil {
		klog.V(2).InfoS("Query failed", "Host", oq.Host, "Keyspace", oq.Keyspace, "Attempt", oq.Attempt, "Latency", oq.End.Sub(oq.Start), "Error", oq.Err)
	}
}
