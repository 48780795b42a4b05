// Copyright (C) 2026 ScyllaDB

package session

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestRowGetInt(t *testing.T) {
	t.Parallel()

	tt := []struct {
		name          string
		row           Row
		expected      int32
		expectedError bool
	}{
		{
			name:     "int",
			row:      Row{"v1": 7},
			expected: 7,
		},
		{
			name:     "int32",
			row:      Row{"v1": int32(-7)},
			expected: -7,
		},
		{
			name:     "int64 in range",
			row:      Row{"v1": int64(math.MaxInt32)},
			expected: math.MaxInt32,
		},
		{
			name:          "int64 overflow",
			row:           Row{"v1": int64(math.MaxInt32) + 1},
			expectedError: true,
		},
		{
			name:     "smallint",
			row:      Row{"v1": int16(3)},
			expected: 3,
		},
		{
			name:     "null",
			row:      Row{"v1": nil},
			expected: 0,
		},
		{
			name:          "missing column",
			row:           Row{"v0": 1},
			expectedError: true,
		},
		{
			name:          "text column",
			row:           Row{"v1": "7"},
			expectedError: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := tc.row.GetInt("v1")
			if (err != nil) != tc.expectedError {
				t.Errorf("expected error %v, got %v", tc.expectedError, err)
			}
			if got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestResultSet(t *testing.T) {
	t.Parallel()

	empty := NewResultSet(nil)
	if empty.AvailableWithoutFetching() != 0 {
		t.Errorf("expected no rows, got %d", empty.AvailableWithoutFetching())
	}
	if _, ok := empty.One(); ok {
		t.Errorf("expected no first row")
	}
	if empty.HasMorePages() {
		t.Errorf("expected no more pages")
	}
	if _, err := empty.FetchNextPage(context.Background()); !errors.Is(err, ErrNoMorePages) {
		t.Errorf("expected %v, got %v", ErrNoMorePages, err)
	}

	var fetchedFrom []byte
	paged := &ResultSet{
		rows:      []Row{{"v1": 1}, {"v1": 2}},
		pageState: []byte{0x01},
		fetch: func(ctx context.Context, pageState []byte) (*ResultSet, error) {
			fetchedFrom = pageState
			return NewResultSet([]Row{{"v1": 3}}), nil
		},
	}
	if paged.AvailableWithoutFetching() != 2 {
		t.Errorf("expected 2 rows, got %d", paged.AvailableWithoutFetching())
	}
	row, ok := paged.One()
	if !ok || row["v1"] != 1 {
		t.Errorf("unexpected first row %v", row)
	}

	next, err := paged.FetchNextPage(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(fetchedFrom) != 1 || fetchedFrom[0] != 0x01 {
		t.Errorf("expected fetch from the saved page state, got %v", fetchedFrom)
	}
	if next.AvailableWithoutFetching() != 1 {
		t.Errorf("expected 1 row on the next page, got %d", next.AvailableWithoutFetching())
	}
}
