// Copyright (C) 2024 ScyllaDB

package version

import (
	"fmt"

	"github.com/scylladb/scylla-request-processor/pkg/genericclioptions"
	"github.com/scylladb/scylla-request-processor/pkg/version"
	"github.com/spf13/cobra"
	"k8s.io/kubectl/pkg/util/templates"
)

type Options struct {
	Short bool
}

func NewOptions(streams genericclioptions.IOStreams) *Options {
	return &Options{}
}

func NewCmd(streams genericclioptions.IOStreams) *cobra.Command {
	o := NewOptions(streams)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Long: templates.LongDesc(`
		version prints the program version.
		`),
		Example: templates.Examples(`
		# Print the program version
		keyrequest version

		# Print only the version tag
		keyrequest version --short
		`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.Run(streams, cmd)
		},
		ValidArgs: []string{},

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.Flags().BoolVarP(&o.Short, "short", "", o.Short, "Print only the version tag.")

	return cmd
}

func (o *Options) Run(streams genericclioptions.IOStreams, cmd *cobra.Command) error {
	v := version.Get()
	if o.Short {
		_, err := fmt.Fprintln(streams.Out, v.GitVersion)
		return err
	}

	_, err := fmt.Fprintf(streams.Out, "%s: %s\n", cmd.Name(), v)
	return err
}
