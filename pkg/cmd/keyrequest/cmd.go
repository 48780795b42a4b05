// Copyright (C) 2026 ScyllaDB

package keyrequest

import (
	"fmt"

	versioncmd "github.com/scylladb/scylla-request-processor/pkg/cmd/version"
	"github.com/scylladb/scylla-request-processor/pkg/cmdutil"
	"github.com/scylladb/scylla-request-processor/pkg/genericclioptions"
	"github.com/scylladb/scylla-request-processor/pkg/naming"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"k8s.io/klog/v2"
)

func NewKeyRequestCommand(streams genericclioptions.IOStreams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   naming.ProgramName,
		Short: "Look up values through the key request processor.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := maxprocs.Set(maxprocs.Logger(func(format string, v ...interface{}) {
				klog.V(2).Infof(format, v...)
			}))
			if err != nil {
				return fmt.Errorf("can't set maxproc: %w", err)
			}

			err = cmdutil.ReadFlagsFromEnv(naming.EnvVarPrefix, cmd)
			if err != nil {
				return fmt.Errorf("can't read flags from env: %w", err)
			}

			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(versioncmd.NewCmd(streams))
	cmd.AddCommand(NewLookupCmd(streams))
	cmd.AddCommand(NewSeedCmd(streams))

	cmdutil.InstallKlog(cmd)

	return cmd
}
