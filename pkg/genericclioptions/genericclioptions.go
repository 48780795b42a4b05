package genericclioptions

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/scylladb/scylla-request-processor/pkg/session"
	"github.com/spf13/cobra"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	apimachineryutilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// IOStreams is a structure containing all standard streams.
type IOStreams struct {
	// In think, os.Stdin
	In io.Reader
	// Out think, os.Stdout
	Out io.Writer
	// ErrOut think, os.Stderr
	ErrOut io.Writer
}

// CQLClientOptions collects the flags used to connect to a cluster.
// Flags that are set take precedence over the config file.
type CQLClientOptions struct {
	ConfigFile     string
	Hosts          []string
	Keyspace       string
	Consistency    string
	LocalDC        string
	Username       string
	Password       string
	Timeout        time.Duration
	ConnectTimeout time.Duration

	Config *session.Config
}

func NewCQLClientOptions() CQLClientOptions {
	return CQLClientOptions{}
}

func (o *CQLClientOptions) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "", o.ConfigFile, "Path to a YAML file with the connection config.")
	cmd.PersistentFlags().StringSliceVarP(&o.Hosts, "hosts", "", o.Hosts, "Contact points of the cluster.")
	cmd.PersistentFlags().StringVarP(&o.Keyspace, "keyspace", "", o.Keyspace, "Keyspace to use.")
	cmd.PersistentFlags().StringVarP(&o.Consistency, "consistency", "", o.Consistency, "Default consistency level, e.g. LOCAL_QUORUM.")
	cmd.PersistentFlags().StringVarP(&o.LocalDC, "local-dc", "", o.LocalDC, "Name of the local datacenter. Enables DC-aware host selection.")
	cmd.PersistentFlags().StringVarP(&o.Username, "username", "", o.Username, "Username for password authentication.")
	cmd.PersistentFlags().StringVarP(&o.Password, "password", "", o.Password, "Password for password authentication.")
	cmd.PersistentFlags().DurationVarP(&o.Timeout, "timeout", "", o.Timeout, "Query timeout. Zero keeps the configured value.")
	cmd.PersistentFlags().DurationVarP(&o.ConnectTimeout, "connect-timeout", "", o.ConnectTimeout, "Connection timeout. Zero keeps the configured value.")
}

func (o *CQLClientOptions) Validate() error {
	var errs []error

	if len(o.ConfigFile) == 0 && len(o.Hosts) == 0 {
		errs = append(errs, errors.New("either --hosts or --config has to be set"))
	}

	if o.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout (%v) can't be negative", o.Timeout))
	}

	if o.ConnectTimeout < 0 {
		errs = append(errs, fmt.Errorf("connect-timeout (%v) can't be negative", o.ConnectTimeout))
	}

	if len(o.Password) != 0 && len(o.Username) == 0 {
		errs = append(errs, errors.New("password requires a username"))
	}

	return apimachineryutilerrors.NewAggregate(errs)
}

func (o *CQLClientOptions) Complete() error {
	var err error

	if len(o.ConfigFile) != 0 {
		o.Config, err = session.LoadConfigFile(o.ConfigFile)
		if err != nil {
			return err
		}
	} else {
		o.Config = session.DefaultConfig()
	}

	if len(o.Hosts) != 0 {
		o.Config.Hosts = o.Hosts
	}
	if len(o.Keyspace) != 0 {
		o.Config.Keyspace = o.Keyspace
	}
	if len(o.Consistency) != 0 {
		o.Config.Consistency = o.Consistency
	}
	if len(o.LocalDC) != 0 {
		o.Config.LocalDC = o.LocalDC
	}
	if len(o.Username) != 0 {
		o.Config.Username = o.Username
		o.Config.Password = o.Password
	}
	if o.Timeout != 0 {
		o.Config.Timeout = metav1.Duration{Duration: o.Timeout}
	}
	if o.ConnectTimeout != 0 {
		o.Config.ConnectTimeout = metav1.Duration{Duration: o.ConnectTimeout}
	}

	err = o.Config.Validate()
	if err != nil {
		return fmt.Errorf("invalid connection config: %w", err)
	}

	return nil
}
