// Copyright (C) 2026 ScyllaDB

package keyrequest

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/scylladb/scylla-request-processor/pkg/cmdutil"
	"github.com/scylladb/scylla-request-processor/pkg/genericclioptions"
	"github.com/scylladb/scylla-request-processor/pkg/keyrequest"
	"github.com/scylladb/scylla-request-processor/pkg/session"
	"github.com/scylladb/scylla-request-processor/pkg/signals"
	"github.com/spf13/cobra"
	apimachineryutilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/kubectl/pkg/util/templates"
)

type SeedOptions struct {
	genericclioptions.CQLClientOptions

	Rows              int
	ExtraRows         []string
	ReplicationFactor int

	extraRows []keyrequest.Row
}

func NewSeedOptions(streams genericclioptions.IOStreams) *SeedOptions {
	return &SeedOptions{
		CQLClientOptions:  genericclioptions.NewCQLClientOptions(),
		Rows:              100,
		ReplicationFactor: 1,
	}
}

func NewSeedCmd(streams genericclioptions.IOStreams) *cobra.Command {
	o := NewSeedOptions(streams)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Creates the lookup table and fills it with rows.",
		Long: templates.LongDesc(`
		seed creates a keyspace with the lookup table and inserts rows under the
		fixed partition key. The keyspace name is printed on success. When no
		keyspace is given, a random one is generated.
		`),
		Example: templates.Examples(`
		# Insert 100 rows where v0 == v1
		keyrequest seed --hosts=10.0.0.1

		# Insert a single row mapping key 42 to value 7
		keyrequest seed --hosts=10.0.0.1 --rows=0 --row=42=7
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return cmdutil.UsageError(cmd, "unexpected arguments %q, rows are set with --row", args)
			}

			err := o.Validate()
			if err != nil {
				return err
			}

			err = o.Complete()
			if err != nil {
				return err
			}

			err = o.Run(streams, cmd)
			if err != nil {
				return err
			}

			return nil
		},

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	o.AddFlags(cmd)

	return cmd
}

func (o *SeedOptions) AddFlags(cmd *cobra.Command) {
	o.CQLClientOptions.AddFlags(cmd)

	cmd.Flags().IntVarP(&o.Rows, "rows", "", o.Rows, "Number of sequential rows (v0 == v1) to insert.")
	cmd.Flags().StringArrayVarP(&o.ExtraRows, "row", "", o.ExtraRows, "Additional row in the form <v0>=<v1>. Can be repeated.")
	cmd.Flags().IntVarP(&o.ReplicationFactor, "replication-factor", "", o.ReplicationFactor, "Replication factor of the created keyspace.")
}

func parseRow(s string) (keyrequest.Row, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return keyrequest.Row{}, fmt.Errorf("row %q isn't in the form <v0>=<v1>", s)
	}

	v0, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil {
		return keyrequest.Row{}, fmt.Errorf("can't parse v0 of row %q: %w", s, err)
	}

	v1, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil {
		return keyrequest.Row{}, fmt.Errorf("can't parse v1 of row %q: %w", s, err)
	}

	return keyrequest.Row{K: keyrequest.Key, V0: int32(v0), V1: int32(v1)}, nil
}

func (o *SeedOptions) Validate() error {
	var errs []error

	errs = append(errs, o.CQLClientOptions.Validate())

	if o.Rows < 0 {
		errs = append(errs, fmt.Errorf("rows (%d) can't be negative", o.Rows))
	}

	if o.ReplicationFactor < 1 {
		errs = append(errs, fmt.Errorf("replication-factor (%d) has to be at least 1", o.ReplicationFactor))
	}

	for _, r := range o.ExtraRows {
		_, err := parseRow(r)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return apimachineryutilerrors.NewAggregate(errs)
}

func (o *SeedOptions) Complete() error {
	err := o.CQLClientOptions.Complete()
	if err != nil {
		return err
	}

	o.extraRows = make([]keyrequest.Row, 0, len(o.ExtraRows))
	for _, r := range o.ExtraRows {
		row, err := parseRow(r)
		if err != nil {
			return err
		}
		o.extraRows = append(o.extraRows, row)
	}

	return nil
}

func (o *SeedOptions) Run(streams genericclioptions.IOStreams, cmd *cobra.Command) error {
	ctx, cancel := signals.Context(context.Background())
	defer cancel()

	// The fixture qualifies the table with its keyspace, which may not exist yet.
	cfg := *o.Config
	keyspace := cfg.Keyspace
	cfg.Keyspace = ""

	s, err := session.NewSession(ctx, &cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	f := keyrequest.NewFixture(s.CQLX(), keyspace, o.ReplicationFactor)

	err = f.Setup(ctx)
	if err != nil {
		return err
	}

	rows := append(keyrequest.SequentialRows(o.Rows), o.extraRows...)
	err = f.Insert(ctx, rows...)
	if err != nil {
		return err
	}

	n, err := f.Count(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(streams.Out, "keyspace %s: %d rows\n", f.Keyspace(), n)
	return err
}
