package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"climindex/adapters/specfile"
	"climindex/app"
	"climindex/internal"
	"climindex/internal/config"
	"climindex/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "indice",
		Short:         "Validate, resolve and compute user-defined climate indices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newValidateCmd(),
		newResolveCmd(),
		newComputeCmd(),
		newBatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// environment holds what every command needs once config is loaded.
type environment struct {
	config  *config.Config
	logger  *internal.Logger
	service *app.IndiceService
}

func newEnvironment() (*environment, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	return &environment{config: cfg, logger: c.Logger, service: c.IndiceService}, nil
}

func newValidateCmd() *cobra.Command {
	var specPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check an indice definition against the parameter catalog",
		Long: `Check an indice definition without computing anything.

Example: indice validate --spec su.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			def, err := specfile.Load(specPath)
			if err != nil {
				return err
			}
			if err := env.service.Validate(def.Spec, def.Variables, def.TimeRange); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid indice over %v\n", specPath, def.Variables)
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "Indice definition file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func newResolveCmd() *cobra.Command {
	var specPath, outUnit string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the per-variable parameter records of an indice",
		Long: `Validate and normalize an indice definition, then print the resolved records as JSON.

Example: indice resolve --spec hot_and_wet.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			def, err := specfile.Load(specPath)
			if err != nil {
				return err
			}
			unit := def.OutUnit
			if outUnit != "" {
				unit = outUnit
			}
			resolved, err := env.service.Resolve(def.Spec, def.Variables, def.TimeRange, unit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resolved)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "Indice definition file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&outUnit, "out-unit", "", "Output unit: days, hours, timesteps, value or %")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func newComputeCmd() *cobra.Command {
	var specPath, outUnit string
	var opts inputOptions

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute an indice from xlsx or csv grids",
		Long: `Compute an indice. Each input file has the time in its first column and one
column per grid cell. Files are taken from --var, then --files, then the
definition's inputs section.

Example: indice compute --spec su.yaml --var tasmax=tx_1991.xlsx,tx_2001.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}
			req, err := loadRequest(specPath, outUnit, opts, env)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), env.config.Server.RequestTimeout)
			defer cancel()
			comp, err := env.service.Compute(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), comp)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "Indice definition file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&outUnit, "out-unit", "", "Output unit: days, hours, timesteps, value or %")
	opts.register(cmd)
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

func newBatchCmd() *cobra.Command {
	var specPaths []string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compute several indices concurrently",
		Long: `Compute several indices, each definition naming its own inputs.
Concurrency is bounded by BATCH_CAPACITY; a multivariable indice takes one
unit per variable.

Example: indice batch --spec su.yaml --spec r95p.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment()
			if err != nil {
				return err
			}

			reqs := make([]app.ComputeRequest, 0, len(specPaths))
			for _, path := range specPaths {
				req, err := loadRequest(path, "", inputOptions{}, env)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reqs = append(reqs, req)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), env.config.Server.RequestTimeout)
			defer cancel()
			results, err := env.service.ComputeBatch(ctx, reqs)
			if err != nil {
				return err
			}

			out := make([]batchEntry, len(results))
			failed := 0
			for i, res := range results {
				out[i] = batchEntry{Spec: specPaths[i], Computation: res.Computation}
				if res.Err != nil {
					out[i].Error = res.Err.Error()
					failed++
				}
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d indices failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&specPaths, "spec", nil, "Indice definition file, repeatable")
	_ = cmd.MarkFlagRequired("spec")

	return cmd
}

type batchEntry struct {
	Spec        string           `json:"spec"`
	Computation *app.Computation `json:"computation,omitempty"`
	Error       string           `json:"error,omitempty"`
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
