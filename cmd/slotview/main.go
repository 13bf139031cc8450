// slotview loads a scene file, applies edits and prints the resulting
// cell graph.
//
// Usage:
//
//	slotview check <scene.yaml>
//	slotview eval <scene.yaml> [--set name=value ...] [--resize name=n ...] [-v]
//
// Edits run in order: every --resize first, then every --set. The
// listing has one line per component:
//
//	name  kind  type  size  value
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/dacapoday/slot"
	"github.com/dacapoday/slot/constraint"
	"github.com/dacapoday/slot/registry"
	"github.com/dacapoday/slot/scene"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

var (
	verbose bool
	sets    []string
	resizes []string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "slotview",
	Short:         "Evaluate reactive scene files",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if term.IsTerminal(int(os.Stderr.Fd())) {
			config = zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		slot.SetLogger(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <scene.yaml>",
	Short: "Validate a scene file and build it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		reg, err := sc.Build()
		if err != nil {
			return err
		}
		defer reg.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d components\n", args[0], reg.Len())
		return nil
	},
}

var evalCmd = &cobra.Command{
	Use:   "eval <scene.yaml>",
	Short: "Build a scene, apply edits and print every component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		reg, err := sc.Build()
		if err != nil {
			return err
		}
		defer reg.Close()

		if err := edit(reg, resizes, sets); err != nil {
			return err
		}
		return list(cmd.OutOrStdout(), reg, width())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	evalCmd.Flags().StringArrayVar(&sets, "set", nil, "set a value or array contents (name=value)")
	evalCmd.Flags().StringArrayVar(&resizes, "resize", nil, "resize an array or user constraint (name=n)")
	rootCmd.AddCommand(checkCmd, evalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func edit(reg *registry.Registry, resizes, sets []string) error {
	for _, e := range resizes {
		if err := scene.ApplyResize(reg, e); err != nil {
			return err
		}
	}
	for _, e := range sets {
		if err := scene.ApplySet(reg, e); err != nil {
			return err
		}
	}
	return nil
}

// width returns the room left for the value column.
func width() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w < 80 {
		w = 80
	}
	return w - 40
}

func list(w io.Writer, reg *registry.Registry, maxLen int) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, comp := range reg.Components() {
		var typ, size, val string
		switch comp.Kind {
		case registry.KindValue:
			v, _ := reg.Value(comp.Name)
			typ, size, val = v.TypeName(), "-", fmt.Sprint(v.Any())
		case registry.KindArray:
			a, _ := reg.Array(comp.Name)
			typ, size, val = a.TypeName(), strconv.Itoa(a.Size()), a.Format()
		case registry.KindConstraint:
			c, _ := reg.Constraint(comp.Name)
			typ, size, val = constraintType(c), strconv.Itoa(c.Size()), "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", comp.Name, comp.Kind, typ, size, display(val, maxLen))
	}
	return tw.Flush()
}

func constraintType(c slot.Constraint) string {
	switch c := c.(type) {
	case *constraint.User:
		return "user"
	case *constraint.Linear:
		a, b := c.Coeffs()
		return fmt.Sprintf("linear(%d,%+d)", a, b)
	}
	return fmt.Sprintf("%T", c)
}

// display truncates s to maxLen runes.
func display(s string, maxLen int) string {
	if s == "" {
		return "(empty)"
	}
	runes := []rune(s)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
