// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var ErrNoMorePages = errors.New("no more pages")

// Row is a single result row keyed by column name.
type Row map[string]interface{}

// GetInt returns the value of the named column as a CQL int.
// A NULL value reads as 0.
func (r Row) GetInt(name string) (int32, error) {
	v, ok := r[name]
	if !ok {
		return 0, fmt.Errorf("column %q is not present in the row", name)
	}

	switch n := v.(type) {
	case nil:
		return 0, nil
	case int32:
		return n, nil
	case int:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("column %q value %d overflows int32", name, n)
		}
		return int32(n), nil
	case int64:
		if n < math.MinInt32 || n > math.MaxInt32 {
			return 0, fmt.Errorf("column %q value %d overflows int32", name, n)
		}
		return int32(n), nil
	case int16:
		return int32(n), nil
	case int8:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("column %q has type %T, expected an integer", name, v)
	}
}

type pageFetcher func(ctx context.Context, pageState []byte) (*ResultSet, error)

// ResultSet holds the rows of the current page of an executed statement.
// Rows beyond the current page are only read by FetchNextPage.
type ResultSet struct {
	rows      []Row
	pageState []byte
	fetch     pageFetcher
}

// NewResultSet returns a single-page result set.
func NewResultSet(rows []Row) *ResultSet {
	return &ResultSet{
		rows: rows,
	}
}

// AvailableWithoutFetching returns the number of rows that can be read
// without another round trip.
func (rs *ResultSet) AvailableWithoutFetching() int {
	return len(rs.rows)
}

func (rs *ResultSet) Rows() []Row {
	return rs.rows
}

// One returns the first row of the current page.
func (rs *ResultSet) One() (Row, bool) {
	if len(rs.rows) == 0 {
		return nil, false
	}
	return rs.rows[0], true
}

func (rs *ResultSet) HasMorePages() bool {
	return len(rs.pageState) != 0 && rs.fetch != nil
}

func (rs *ResultSet) PageState() []byte {
	return rs.pageState
}

// FetchNextPage executes the statement again from the saved page state.
func (rs *ResultSet) FetchNextPage(ctx context.Context) (*ResultSet, error) {
	if !rs.HasMorePages() {
		return nil, ErrNoMorePages
	}
	return rs.fetch(ctx, rs.pageState)
}
