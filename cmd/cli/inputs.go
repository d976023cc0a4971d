package main

import (
	"fmt"
	"strings"
	"time"

	"climindex/adapters/excel"
	"climindex/adapters/specfile"
	"climindex/app"
	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
	"climindex/internal/errors"

	"github.com/spf13/cobra"
)

// inputOptions are the file flags shared by compute commands.
type inputOptions struct {
	vars      []string // name=path[,path...]
	files     []string // path[,path...], one group per variable in definition order
	sheet     string
	fillValue float64
	fillSet   bool
}

func (o *inputOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&o.vars, "var", nil, "Variable input as name=file[,file...], repeatable")
	cmd.Flags().StringArrayVar(&o.files, "files", nil, "Input file group aligned with the definition's variables, repeatable")
	cmd.Flags().StringVar(&o.sheet, "sheet", "Sheet1", "Sheet to read from xlsx inputs")
	cmd.Flags().Float64Var(&o.fillValue, "fill-value", 0, "Missing-data marker (default FILL_VALUE)")
	cmd.PreRun = func(cmd *cobra.Command, args []string) {
		o.fillSet = cmd.Flags().Changed("fill-value")
	}
}

// parseVarFlags turns name=file[,file] flags into a file map.
func parseVarFlags(flags []string) (map[core.VariableKey][]string, error) {
	out := make(map[core.VariableKey][]string, len(flags))
	for _, flag := range flags {
		name, paths, ok := strings.Cut(flag, "=")
		if !ok || strings.TrimSpace(paths) == "" {
			return nil, errors.InvalidInput(fmt.Sprintf("--var %q: expected name=file[,file...]", flag))
		}
		v, err := core.ParseVariableKey(name)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		out[v] = append(out[v], splitPaths(paths)...)
	}
	return out, nil
}

func splitPaths(s string) []string {
	var paths []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// inputFiles decides which files feed each variable. --files groups are
// aligned positionally; otherwise the definition's inputs are overlaid with
// --var flags.
func inputFiles(def *specfile.Definition, opts inputOptions) (map[core.VariableKey][]string, error) {
	if len(opts.files) > 0 {
		groups := make([][]string, len(opts.files))
		for i, g := range opts.files {
			groups[i] = splitPaths(g)
		}
		return indice.CheckFeatures(def.Variables, groups)
	}

	files := make(map[core.VariableKey][]string, len(def.Variables))
	for v, paths := range def.Inputs {
		files[v] = paths
	}
	overrides, err := parseVarFlags(opts.vars)
	if err != nil {
		return nil, err
	}
	for v, paths := range overrides {
		files[v] = paths
	}

	for _, v := range def.Variables {
		if len(files[v]) == 0 {
			return nil, errors.InvalidInput(fmt.Sprintf("no input files for variable %s", v))
		}
	}
	return files, nil
}

// loadRequest reads the definition and the grids of its variables. All
// variables must share the time axis of the first one.
func loadRequest(specPath, outUnit string, opts inputOptions, env *environment) (app.ComputeRequest, error) {
	def, err := specfile.Load(specPath)
	if err != nil {
		return app.ComputeRequest{}, err
	}
	files, err := inputFiles(def, opts)
	if err != nil {
		return app.ComputeRequest{}, err
	}

	readerCfg := excel.DefaultReaderConfig()
	readerCfg.Sheet = opts.sheet
	readerCfg.FillValue = env.config.Compute.FillValue
	if opts.fillSet {
		readerCfg.FillValue = opts.fillValue
	}

	arrays := make(map[core.VariableKey]grid.Grid, len(def.Variables))
	var axis []time.Time
	for i, v := range def.Variables {
		data, err := excel.ReadFiles(files[v], readerCfg, env.logger)
		if err != nil {
			return app.ComputeRequest{}, fmt.Errorf("variable %s: %w", v, err)
		}
		if i == 0 {
			axis = data.TimeAxis
		} else if len(data.TimeAxis) != len(axis) {
			return app.ComputeRequest{}, core.NewShapeError(fmt.Sprintf("time axis of %s", v), len(data.TimeAxis), len(axis))
		}
		arrays[v] = data.Grid
	}

	if outUnit == "" {
		outUnit = def.OutUnit
	}
	fill := readerCfg.FillValue
	return app.ComputeRequest{
		Spec:      def.Spec,
		Variables: def.Variables,
		TimeRange: def.TimeRange,
		OutUnit:   outUnit,
		Arrays:    arrays,
		TimeAxis:  axis,
		FillValue: &fill,
	}, nil
}
