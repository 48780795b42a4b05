// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"errors"

	"github.com/gocql/gocql"
	"k8s.io/klog/v2"
)

const StatementKind RequestKind = "Statement"

// Statement is a CQL query with its bound values.
type Statement struct {
	Query  string
	Values []interface{}

	// Consistency overrides the session default when set.
	Consistency *gocql.Consistency
	// PageSize overrides the session default when positive.
	PageSize int
	// PageState resumes a previous query at the given page.
	PageState []byte
}

var _ Request = &Statement{}

func NewStatement(query string, values ...interface{}) *Statement {
	return &Statement{
		Query:  query,
		Values: values,
	}
}

func (*Statement) Kind() RequestKind {
	return StatementKind
}

// StatementProcessor executes statements synchronously and returns the first
// page of the result.
type StatementProcessor struct{}

var _ RequestProcessor[*Statement, *ResultSet] = &StatementProcessor{}

func NewStatementProcessor() *StatementProcessor {
	return &StatementProcessor{}
}

func (p *StatementProcessor) CanProcess(req Request, resultType ResultType) bool {
	return req != nil && req.Kind() == StatementKind && resultType == ResultTypeResultSet
}

func (p *StatementProcessor) NewHandler(stmt *Statement, s *Session, logPrefix string) (RequestHandler[*ResultSet], error) {
	if stmt == nil {
		return nil, errors.New("statement can't be nil")
	}
	if s == nil || s.cqlx.Session == nil {
		return nil, errors.New("session isn't connected")
	}

	return &statementHandler{
		stmt:      stmt,
		session:   s.cqlx.Session,
		logPrefix: logPrefix,
	}, nil
}

type statementHandler struct {
	stmt      *Statement
	session   *gocql.Session
	logPrefix string
}

func (h *statementHandler) Handle(ctx context.Context) (*ResultSet, error) {
	return h.execute(ctx, h.stmt.PageState)
}

func (h *statementHandler) execute(ctx context.Context, pageState []byte) (*ResultSet, error) {
	q := h.session.Query(h.stmt.Query, h.stmt.Values...).WithContext(ctx)
	defer q.Release()

	if h.stmt.Consistency != nil {
		q = q.Consistency(*h.stmt.Consistency)
	}
	if h.stmt.PageSize > 0 {
		q = q.PageSize(h.stmt.PageSize)
	}
	if len(pageState) != 0 {
		q = q.PageState(pageState)
	}
	// Rows past the current page are fetched only on explicit request.
	q = q.Prefetch(0)

	klog.V(4).InfoS("Executing statement", "Session", h.logPrefix, "Query", h.stmt.Query)

	iter := q.Iter()

	available := iter.NumRows()
	rows := make([]Row, 0, available)
	for range available {
		row := Row{}
		if !iter.MapScan(row) {
			break
		}
		rows = append(rows, row)
	}

	nextPageState := iter.PageState()

	err := iter.Close()
	if err != nil {
		klog.V(4).InfoS("Statement failed", "Session", h.logPrefix, "Query", h.stmt.Query, "Error", err)
		return nil, err
	}

	klog.V(5).InfoS("Statement executed", "Session", h.logPrefix, "Query", h.stmt.Query, "Rows", len(rows), "MorePages", len(nextPageState) != 0)

	return &ResultSet{
		rows:      rows,
		pageState: nextPageState,
		fetch:     h.execute,
	}, nil
}
