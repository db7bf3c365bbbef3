package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vishalbelsare/sindy-3/pkg/engine"
	"github.com/vishalbelsare/sindy-3/pkg/log"
	"github.com/vishalbelsare/sindy-3/pkg/metrics"
	"github.com/vishalbelsare/sindy-3/pkg/sindyerr"
	"github.com/vishalbelsare/sindy-3/pkg/sink"
)

// version is set at release time via -ldflags; "dev" otherwise.
var version = "dev"

// newSindyCmd builds a fresh command tree, including a fresh Flags
// instance, on every call. A package-level singleton command would
// leak flag state across repeated Run calls (StringArrayVar in
// particular accumulates rather than resets), which matters both for
// tests and for any caller embedding Run as a library entry point.
func newSindyCmd() *cobra.Command {
	sindyCmd := &cobra.Command{
		Use:   "sindy [command] (flags)",
		Short: "inclusion-dependency discovery command-line interface",
		Long:  `sindy discovers unary and n-ary inclusion dependencies across CSV tables using the SINDY/ANDY shuffle-based algorithm.`,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "output version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sindy version %s\n", version)
		},
	}

	var runFlags Flags
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "discover inclusion dependencies across one or more CSV tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiscovery(cmd, &runFlags)
		},
	}
	registerFlags(runCmd.Flags(), &runFlags)
	_ = runCmd.MarkFlagRequired("drop-nulls")

	cobra.EnableCommandSorting = false
	sindyCmd.AddCommand(runCmd, versionCmd)
	return sindyCmd
}

func runDiscovery(cmd *cobra.Command, runFlags *Flags) error {
	ctx := context.Background()
	log.SetVerbosity(runFlags.Verbosity)

	cfg, err := runFlags.toConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	tables, err := runFlags.toTables()
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(runFlags.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	m := metrics.New()
	summary, err := engine.Run(ctx, cfg, tables, out, m)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "discovered %d INDs (%d augmentation rules), final arity %d\n",
		summary.TotalINDs, summary.TotalIARs, summary.FinalArity)
	return nil
}

// openOutput resolves --output into a sink.JSONLinesSink and a closer
// that must be called once writing is done; "-" writes to stdout and
// is never closed.
func openOutput(path string) (sink.ResultSink, func(), error) {
	if path == "-" || path == "" {
		return sink.NewJSONLinesSink(os.Stdout, nil), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, sindyerr.MarkInput(err)
	}
	return sink.NewJSONLinesSink(f, nil), func() { f.Close() }, nil
}

// Run executes the sindy command tree against args (typically
// os.Args[1:]).
func Run(args []string) error {
	cmd := newSindyCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}
