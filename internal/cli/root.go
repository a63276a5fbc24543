// Package cli implements the memquery command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const longRoot = `memquery answers GET_MEMORY questions about an agent's working memory.

Memory is either an ephemeral in-memory store populated from a YAML snapshot,
or a persistent SQLite database. Configuration is read from an optional
config file and MEMQUERY_* environment variables (e.g. MEMQUERY_STORE_DRIVER).`

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: newViper()}

	root := &cobra.Command{
		Use:           "memquery",
		Short:         "Query an agent's working memory",
		Long:          longRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.cfgFile)
			if err != nil {
				return err
			}

			a.cfg = cfg

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: json or text")
	flags.String("driver", driverMemory, "store driver: memory or sqlite")
	flags.String("db", "memquery.db", "sqlite database path")

	_ = a.v.BindPFlag(keyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(keyLogFormat, flags.Lookup("log-format"))
	_ = a.v.BindPFlag(keyStoreDriver, flags.Lookup("driver"))
	_ = a.v.BindPFlag(keyStorePath, flags.Lookup("db"))

	root.AddCommand(a.newAskCommand(), a.newImportCommand())

	return root
}

// Execute runs the CLI with os.Args.
func Execute(ctx context.Context) error {
	return run(ctx, NewRootCommand(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(ctx context.Context, root *cobra.Command, args []string, in io.Reader, out, errOut io.Writer) error {
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	return root.ExecuteContext(ctx)
}
