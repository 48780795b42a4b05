// Copyright (C) 2026 ScyllaDB

package keyrequest

import (
	"context"
	"fmt"

	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/gocqlx/v2/qb"
	"github.com/scylladb/gocqlx/v2/table"
	utilrand "k8s.io/apimachinery/pkg/util/rand"
	"k8s.io/klog/v2"
)

const tableName = "test"

// Row is a row of the lookup table.
type Row struct {
	K  string `db:"k"`
	V0 int32  `db:"v0"`
	V1 int32  `db:"v1"`
}

// SequentialRows returns n rows under Key where v0 == v1 == i.
func SequentialRows(n int) []Row {
	rows := make([]Row, 0, n)
	for i := range n {
		rows = append(rows, Row{K: Key, V0: int32(i), V1: int32(i)})
	}
	return rows
}

// Fixture owns a keyspace holding the lookup table.
type Fixture struct {
	session           *gocqlx.Session
	keyspace          string
	replicationFactor int
	table             *table.Table
}

// NewFixture returns a fixture for keyspace. An empty keyspace gets a random name.
func NewFixture(s *gocqlx.Session, keyspace string, replicationFactor int) *Fixture {
	if len(keyspace) == 0 {
		keyspace = "keyrequest_" + utilrand.String(8)
	}

	return &Fixture{
		session:           s,
		keyspace:          keyspace,
		replicationFactor: replicationFactor,
		table: table.New(table.Metadata{
			Name:    fmt.Sprintf(`%q.%q`, keyspace, tableName),
			Columns: []string{"k", "v0", "v1"},
			PartKey: []string{"k"},
			SortKey: []string{"v0"},
		}),
	}
}

func (f *Fixture) Keyspace() string {
	return f.keyspace
}

func (f *Fixture) exec(ctx context.Context, stmt string) error {
	return f.session.Query(stmt, nil).WithContext(ctx).ExecRelease()
}

// Setup creates the keyspace and the table and waits for schema agreement.
func (f *Fixture) Setup(ctx context.Context) error {
	klog.V(2).InfoS("Creating keyspace", "Keyspace", f.keyspace, "ReplicationFactor", f.replicationFactor)
	err := f.exec(ctx, fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %q WITH replication = {'class': 'NetworkTopologyStrategy', 'replication_factor': %d}`,
		f.keyspace,
		f.replicationFactor,
	))
	if err != nil {
		return fmt.Errorf("can't create keyspace %q: %w", f.keyspace, err)
	}

	klog.V(2).InfoS("Creating table", "Table", f.table.Name())
	err = f.exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (k text, v0 int, v1 int, PRIMARY KEY (k, v0))`,
		f.table.Name(),
	))
	if err != nil {
		return fmt.Errorf("can't create table %s: %w", f.table.Name(), err)
	}

	err = f.session.AwaitSchemaAgreement(ctx)
	if err != nil {
		return fmt.Errorf("can't await schema agreement: %w", err)
	}

	return nil
}

func (f *Fixture) Insert(ctx context.Context, rows ...Row) error {
	klog.V(2).InfoS("Inserting rows", "Table", f.table.Name(), "Rows", len(rows))
	for i := range rows {
		err := f.session.Query(f.table.Insert()).WithContext(ctx).BindStruct(&rows[i]).ExecRelease()
		if err != nil {
			return fmt.Errorf("can't insert row (k=%q, v0=%d): %w", rows[i].K, rows[i].V0, err)
		}
	}

	return nil
}

// Count returns the number of rows stored under Key.
func (f *Fixture) Count(ctx context.Context) (int64, error) {
	stmt, names := qb.Select(f.table.Name()).CountAll().Where(qb.Eq("k")).ToCql()

	var n int64
	err := f.session.Query(stmt, names).WithContext(ctx).BindMap(qb.M{"k": Key}).GetRelease(&n)
	if err != nil {
		return 0, fmt.Errorf("can't count rows in %s: %w", f.table.Name(), err)
	}

	return n, nil
}

func (f *Fixture) Teardown(ctx context.Context) error {
	klog.V(2).InfoS("Dropping keyspace", "Keyspace", f.keyspace)
	err := f.exec(ctx, fmt.Sprintf(`DROP KEYSPACE IF EXISTS %q`, f.keyspace))
	if err != nil {
		return fmt.Errorf("can't drop keyspace %q: %w", f.keyspace, err)
	}

	return nil
}
