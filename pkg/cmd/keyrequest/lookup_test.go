// Copyright (C) 2026 ScyllaDB

package keyrequest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gocql/gocql"
	"github.com/scylladb/gocqlx/v2"
	"github.com/scylladb/scylla-request-processor/pkg/genericclioptions"
	"github.com/scylladb/scylla-request-processor/pkg/keyrequest"
	"github.com/scylladb/scylla-request-processor/pkg/session"
)

// tableStatementProcessor answers lookups from an in-memory table indexed by v0.
type tableStatementProcessor struct {
	table map[int32][]session.Row
	err   error
}

func (p *tableStatementProcessor) CanProcess(req session.Request, resultType session.ResultType) bool {
	return req != nil && req.Kind() == session.StatementKind && resultType == session.ResultTypeResultSet
}

func (p *tableStatementProcessor) NewHandler(stmt *session.Statement, s *session.Session, logPrefix string) (session.RequestHandler[*session.ResultSet], error) {
	return session.RequestHandlerFunc[*session.ResultSet](func(ctx context.Context) (*session.ResultSet, error) {
		if p.err != nil {
			return nil, p.err
		}
		return session.NewResultSet(p.table[stmt.Values[1].(int32)]), nil
	}), nil
}

func TestLookupOptionsLookupKeys(t *testing.T) {
	t.Parallel()

	table := map[int32][]session.Row{
		42: {{"v1": int32(7)}},
		43: {{"v1": int32(1)}, {"v1": int32(2)}},
		44: {{"v1": int32(-2147483647)}},
	}

	tt := []struct {
		name           string
		keys           []int32
		err            error
		expectedOutput string
		expectedError  error
	}{
		{
			name:           "unique row prints its value",
			keys:           []int32{42},
			expectedOutput: "42: 7\n",
		},
		{
			name:           "missing and ambiguous rows print no unique row",
			keys:           []int32{9999, 43},
			expectedOutput: "9999: no unique row\n43: no unique row\n",
		},
		{
			name:           "keys are printed in the given order",
			keys:           []int32{44, 9999, 42},
			expectedOutput: "44: -2147483647\n9999: no unique row\n42: 7\n",
		},
		{
			name:           "lookup error stops the output",
			keys:           []int32{42},
			err:            gocql.ErrTimeoutNoResponse,
			expectedOutput: "",
			expectedError:  gocql.ErrTimeoutNoResponse,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s, err := session.Wrap(gocqlx.Session{})
			if err != nil {
				t.Fatal(err)
			}

			err = keyrequest.Register(s, &tableStatementProcessor{table: table, err: tc.err})
			if err != nil {
				t.Fatal(err)
			}

			o := NewLookupOptions(genericclioptions.IOStreams{})
			o.Keys = tc.keys

			out := &bytes.Buffer{}
			err = o.lookupKeys(context.Background(), out, s)
			if !errors.Is(err, tc.expectedError) {
				t.Errorf("expected error %v, got %v", tc.expectedError, err)
			}
			if out.String() != tc.expectedOutput {
				t.Errorf("expected output %q, got %q", tc.expectedOutput, out.String())
			}
		})
	}
}

func TestLookupCmdRejectsArguments(t *testing.T) {
	t.Parallel()

	cmd := NewLookupCmd(genericclioptions.IOStreams{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}})
	cmd.SetArgs([]string{"--hosts=10.0.0.1", "42"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error for a positional argument")
	}
	if !strings.Contains(err.Error(), "See 'lookup -h' for help and examples.") {
		t.Errorf("expected a usage error, got %q", err)
	}
}
