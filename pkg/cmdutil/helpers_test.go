// Copyright (C) 2026 ScyllaDB

package cmdutil

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestNormalizeNameForEnvVar(t *testing.T) {
	t.Parallel()

	got := NormalizeNameForEnvVar("KEYREQUEST_connect-timeout")
	if got != "KEYREQUEST_CONNECT_TIMEOUT" {
		t.Errorf("expected %q, got %q", "KEYREQUEST_CONNECT_TIMEOUT", got)
	}
}

func TestReadFlagsFromEnv(t *testing.T) {
	t.Setenv("TEST_KEY", "42")
	t.Setenv("TEST_KEYSPACE", "from_env")
	t.Setenv("TEST_ROWS", "not-a-number")

	var key, rows int
	var keyspace string
	cmd := &cobra.Command{}
	cmd.Flags().IntVar(&key, "key", 0, "")
	cmd.Flags().StringVar(&keyspace, "keyspace", "", "")
	cmd.Flags().IntVar(&rows, "rows", 0, "")

	err := cmd.Flags().Set("keyspace", "from_flag")
	if err != nil {
		t.Fatal(err)
	}

	err = ReadFlagsFromEnv("TEST_", cmd)
	if err == nil {
		t.Errorf("expected an error for an unparsable env var")
	}

	if key != 42 {
		t.Errorf("expected key 42 from env, got %d", key)
	}
	if keyspace != "from_flag" {
		t.Errorf("expected the flag to take precedence, got %q", keyspace)
	}
}
