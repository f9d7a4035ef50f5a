package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/pipeline"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "pipelinectl",
		Short:        "Inspect pipeline graphs",
		SilenceUsage: true,
	}
	root.AddCommand(newCheckCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

type checkOptions struct {
	output string
	strict bool
}

// fileResult is one line of check output.
type fileResult struct {
	pipeline.Result `yaml:",inline"`

	File string `json:"file" yaml:"file"`
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check [file...]",
		Short: "Report node/edge counts and whether each pipeline is acyclic",
		Long: `Reads pipeline JSON ({"nodes": [...], "edges": [...]}) from each file,
or from stdin when no file or "-" is given, and prints the analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a pipeline contains a cycle")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if opts.output != "json" && opts.output != "yaml" {
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	results := make([]fileResult, 0, len(args))
	for _, name := range args {
		p, err := readPipeline(cmd.InOrStdin(), name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		results = append(results, fileResult{File: name, Result: pipeline.Parse(p)})
	}

	if err := render(cmd.OutOrStdout(), opts.output, results); err != nil {
		return err
	}

	if opts.strict {
		var errs []error
		for _, r := range results {
			if !r.IsDAG {
				errs = append(errs, fmt.Errorf("%s: %w", r.File, pipeline.ErrCycleDetected))
			}
		}
		return errors.Join(errs...)
	}
	return nil
}

func readPipeline(stdin io.Reader, name string) (*pipeline.Pipeline, error) {
	if name == "-" {
		return pipeline.Decode(stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pipeline.Decode(f)
}

func render(w io.Writer, format string, results []fileResult) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(results)
	}
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
