// Copyright (C) 2026 ScyllaDB

package keyrequest

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/scylladb/scylla-request-processor/pkg/cmdutil"
	"github.com/scylladb/scylla-request-processor/pkg/genericclioptions"
	"github.com/scylladb/scylla-request-processor/pkg/keyrequest"
	"github.com/scylladb/scylla-request-processor/pkg/session"
	"github.com/scylladb/scylla-request-processor/pkg/signals"
	"github.com/spf13/cobra"
	apimachineryutilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
	"k8s.io/kubectl/pkg/util/templates"
)

type LookupOptions struct {
	genericclioptions.CQLClientOptions

	Keys []int32
}

func NewLookupOptions(streams genericclioptions.IOStreams) *LookupOptions {
	return &LookupOptions{
		CQLClientOptions: genericclioptions.NewCQLClientOptions(),
	}
}

func NewLookupCmd(streams genericclioptions.IOStreams) *cobra.Command {
	o := NewLookupOptions(streams)

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Looks up the value stored for a key.",
		Long: templates.LongDesc(`
		lookup sends a key request for every given key and prints the value of the
		single matching row. Keys that match no row, or more than one, are reported
		as having no unique row.
		`),
		Example: templates.Examples(`
		# Look up key 42 in the keyspace created by seed
		keyrequest lookup --hosts=10.0.0.1 --keyspace=keyrequest_abcd1234 --key=42
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return cmdutil.UsageError(cmd, "unexpected arguments %q, keys are set with --key", args)
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

func (o *LookupOptions) AddFlags(cmd *cobra.Command) {
	o.CQLClientOptions.AddFlags(cmd)

	cmd.Flags().Int32SliceVarP(&o.Keys, "key", "", o.Keys, "Key to look up. Can be repeated.")
}

func (o *LookupOptions) Validate() error {
	var errs []error

	errs = append(errs, o.CQLClientOptions.Validate())

	if len(o.Keys) == 0 {
		errs = append(errs, fmt.Errorf("at least one --key has to be set"))
	}

	return apimachineryutilerrors.NewAggregate(errs)
}

func (o *LookupOptions) Complete() error {
	return o.CQLClientOptions.Complete()
}

func (o *LookupOptions) Run(streams genericclioptions.IOStreams, cmd *cobra.Command) error {
	ctx, cancel := signals.Context(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	s, err := session.NewSession(ctx, o.Config, session.WithMetricsRegisterer(registry))
	if err != nil {
		return err
	}
	defer s.Close()

	err = keyrequest.Register(s, s.StatementProcessor())
	if err != nil {
		return fmt.Errorf("can't register key request processor: %w", err)
	}

	err = o.lookupKeys(ctx, streams.Out, s)
	if err != nil {
		return err
	}

	logMetrics(registry)

	return nil
}

// lookupKeys prints one line per key. s has to have a key request processor registered.
func (o *LookupOptions) lookupKeys(ctx context.Context, out io.Writer, s *session.Session) error {
	for _, key := range o.Keys {
		v, err := keyrequest.Lookup(ctx, s, key)
		if err != nil {
			return fmt.Errorf("can't look up key %d: %w", key, err)
		}

		if v == keyrequest.NoUniqueRow {
			_, err = fmt.Fprintf(out, "%d: no unique row\n", key)
		} else {
			_, err = fmt.Fprintf(out, "%d: %d\n", key, v)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func logMetrics(registry *prometheus.Registry) {
	if !klog.V(2).Enabled() {
		return
	}

	families, err := registry.Gather()
	if err != nil {
		klog.ErrorS(err, "Can't gather metrics")
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]interface{}, 0, 2*len(m.GetLabel())+4)
			labels = append(labels, "Name", mf.GetName(), "Value", m.GetCounter().GetValue())
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName(), lp.GetValue())
			}
			klog.InfoS("Metric", labels...)
		}
	}
}
