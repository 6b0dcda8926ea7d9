// Command forge runs a compiled workout script against the runtime and
// prints the resulting output stream — a thin cobra CLI over the
// compiler/runtime packages, in the style of the pack's own cobra-based
// command trees.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"forge/clock"
	"forge/config"
	"forge/metrics"
	"forge/runtime"
	"forge/trace"
	"forge/types"
)

var (
	scriptPath  string
	rootID      int
	configPath  string
	verbose     bool
	traceFilter []string
	withMetrics bool
	maxTicks    int
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "forge",
		Short: "Compile and run a workout script against the forge runtime",
	}

	root.PersistentFlags().StringVarP(&scriptPath, "script", "s", "", "path to a JSON-encoded []CodeStatement script (required)")
	root.PersistentFlags().IntVarP(&rootID, "root", "r", 1, "statement id of the root block to compile")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (optional, defaults apply otherwise)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable block lifecycle tracing to stderr")
	root.PersistentFlags().StringSliceVar(&traceFilter, "trace-filter", nil, "glob patterns of block types to trace (implies --verbose)")
	root.PersistentFlags().BoolVar(&withMetrics, "metrics", false, "register Prometheus runtime metrics")

	root.AddCommand(newRunCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forge version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("forge dev")
			return nil
		},
	}
}

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compile the script's root statement and run it to completion",
		RunE:  runWorkout,
	}
	cmd.Flags().IntVar(&maxTicks, "max-ticks", 10_000, "safety cap on ticks driven before giving up")
	return cmd
}

func runWorkout(cmd *cobra.Command, args []string) error {
	if scriptPath == "" {
		return fmt.Errorf("forge run: --script is required")
	}

	statements, err := loadScript(scriptPath)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	if verbose || len(traceFilter) > 0 {
		trace.Init(true, traceFilter, os.Stderr)
	}

	rt := runtime.New(statements, rootID, cfg.Clock())
	rt.SetMaxIterationsPerTurn(cfg.MaxIterationsPerTurn)
	if withMetrics {
		rt.SetMetrics(metrics.NewRuntimeMetrics())
	}

	unsubscribe := rt.OnOutput(func(out types.OutputStatement) {
		printOutput(out)
	})
	defer unsubscribe()

	if errs := rt.Start(); len(errs) > 0 {
		reportErrors(errs)
	}

	driver := runtime.NewTickDriver(rt, time.Duration(cfg.TickIntervalMs)*time.Millisecond)
	driver.Start()
	defer driver.Stop()

	for i := 0; i < maxTicks && rt.Depth() > 0; i++ {
		time.Sleep(time.Duration(cfg.TickIntervalMs) * time.Millisecond)
	}

	if len(rt.Errors) > 0 {
		reportErrors(rt.Errors)
	}
	return nil
}

func loadScript(path string) ([]types.CodeStatement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("forge: read script %s: %w", path, err)
	}
	var statements []types.CodeStatement
	if err := json.Unmarshal(data, &statements); err != nil {
		return nil, fmt.Errorf("forge: parse script %s: %w", path, err)
	}
	return statements, nil
}

func printOutput(out types.OutputStatement) {
	encoded, err := json.Marshal(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forge: encode output %d: %v\n", out.ID, err)
		return
	}
	fmt.Println(string(encoded))
}

func reportErrors(errs []types.RuntimeError) {
	for _, e := range errs {
		fmt.Fprintln(os.Stderr, "forge:", e.Error())
	}
}
