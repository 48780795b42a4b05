//go:build integration

// Copyright (C) 2026 ScyllaDB

package integration

import (
	"context"
	"time"

	"github.com/gocql/gocql"
	g "github.com/onsi/ginkgo/v2"
	o "github.com/onsi/gomega"
	"github.com/scylladb/scylla-request-processor/pkg/keyrequest"
	"github.com/scylladb/scylla-request-processor/pkg/session"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

var _ = g.Describe("Key request processor", func() {
	var (
		fixture *keyrequest.Fixture
		s       *session.Session
	)

	g.BeforeEach(func(ctx g.SpecContext) {
		if len(hosts) == 0 {
			g.Skip("no cluster hosts set in " + hostsEnvVar)
		}

		cfg := session.DefaultConfig()
		cfg.Hosts = hosts
		cfg.Consistency = gocql.One.String()

		g.By("Creating the lookup table")
		setupSession, err := session.NewSession(ctx, cfg)
		o.Expect(err).NotTo(o.HaveOccurred())
		g.DeferCleanup(setupSession.Close)

		fixture = keyrequest.NewFixture(setupSession.CQLX(), "", 1)
		o.Expect(fixture.Setup(ctx)).To(o.Succeed())
		g.DeferCleanup(func(ctx context.Context) {
			o.Expect(fixture.Teardown(ctx)).To(o.Succeed())
		})

		rows := append(keyrequest.SequentialRows(10), keyrequest.Row{K: keyrequest.Key, V0: 42, V1: 7})
		o.Expect(fixture.Insert(ctx, rows...)).To(o.Succeed())
		o.Expect(fixture.Count(ctx)).To(o.BeEquivalentTo(11))

		g.By("Connecting a session bound to the fixture keyspace")
		cfg.Keyspace = fixture.Keyspace()
		s, err = session.NewSession(ctx, cfg)
		o.Expect(err).NotTo(o.HaveOccurred())
		g.DeferCleanup(s.Close)

		o.Expect(keyrequest.Register(s, s.StatementProcessor())).To(o.Succeed())
	})

	g.It("returns the value of the single matching row", func(ctx g.SpecContext) {
		v, err := keyrequest.Lookup(ctx, s, 42)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(v).To(o.Equal(int32(7)))

		for i := range int32(10) {
			v, err := keyrequest.Lookup(ctx, s, i)
			o.Expect(err).NotTo(o.HaveOccurred())
			o.Expect(v).To(o.Equal(i))
		}
	})

	g.It("returns the sentinel when no row matches", func(ctx g.SpecContext) {
		v, err := keyrequest.Lookup(ctx, s, 9999)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(v).To(o.Equal(keyrequest.NoUniqueRow))
	})

	g.It("returns the context error when the request is cancelled", func(ctx g.SpecContext) {
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := keyrequest.Lookup(cancelledCtx, s, 42)
		o.Expect(err).To(o.MatchError(context.Canceled))
	})

	g.It("pages through plain statements", func(ctx g.SpecContext) {
		stmt := session.NewStatement("select v0, v1 from test where k = ?", keyrequest.Key)
		stmt.PageSize = 4

		rs, err := s.ExecuteStatement(ctx, stmt)
		o.Expect(err).NotTo(o.HaveOccurred())
		o.Expect(rs.AvailableWithoutFetching()).To(o.Equal(4))
		o.Expect(rs.HasMorePages()).To(o.BeTrue())

		total := rs.AvailableWithoutFetching()
		for rs.HasMorePages() {
			rs, err = rs.FetchNextPage(ctx)
			o.Expect(err).NotTo(o.HaveOccurred())
			total += rs.AvailableWithoutFetching()
		}
		o.Expect(total).To(o.Equal(11))
	})
})

var _ = g.Describe("Session", func() {
	g.It("gives up connecting to an unreachable cluster", func(ctx g.SpecContext) {
		cfg := session.DefaultConfig()
		cfg.Hosts = []string{"127.0.0.1:1"}
		cfg.ConnectTimeout = metav1.Duration{Duration: 100 * time.Millisecond}
		cfg.Connect.MaxRetries = 1
		cfg.Connect.WaitMin = metav1.Duration{Duration: 10 * time.Millisecond}
		cfg.Connect.WaitMax = metav1.Duration{Duration: 10 * time.Millisecond}

		_, err := session.NewSession(ctx, cfg)
		o.Expect(err).To(o.HaveOccurred())
	})
})
