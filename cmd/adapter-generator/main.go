// Package main provides the CLI entrypoint for adapter-generator.
//
// adapter-generator reads a YAML definition of hand-written domain
// types, resolves one conversion strategy per field against the wire
// schema, and emits bidirectional adapter functions as Go source.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adapter-generator/internal/descriptor"
	"adapter-generator/internal/gen"
	"adapter-generator/internal/metadata"
	"adapter-generator/internal/plan"
	"adapter-generator/internal/shape"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "adapter-generator",
		Short:         "generate wire-to-domain adapter functions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(generateCommand(), checkCommand())

	return root
}

type generateOptions struct {
	definition  string
	outputDir   string
	packageName string
	wireImport  string
	namespace   string
	protoFiles  []string
	fieldMeta   string
	envMeta     bool
	envPrefix   string
	comments    bool
}

func (o *generateOptions) bindFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&o.definition, "definition", "d", "adapters.yaml", "domain definition file")
	flags.StringVarP(&o.outputDir, "out", "o", "./generated", "output directory")
	flags.StringVarP(&o.packageName, "package", "p", "adapters", "generated package name")
	flags.StringVar(&o.wireImport, "wire-import", "", "import path of the wire-type package")
	flags.StringVar(&o.namespace, "namespace", "", "default wire package alias")
	flags.StringSliceVar(&o.protoFiles, "proto", nil, "wire schema files for optionality lookup")
	flags.StringVar(&o.fieldMeta, "field-meta", "", "YAML field optionality table")
	flags.BoolVar(&o.envMeta, "env-meta", false, "read field optionality from environment variables")
	flags.StringVar(&o.envPrefix, "env-prefix", "", "environment variable prefix for --env-meta")
	flags.BoolVar(&o.comments, "comments", true, "emit per-field strategy comments")
}

func generateCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "resolve strategies and write adapter source files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := resolve(&opts)
			if err != nil {
				return err
			}

			res.Diagnostics.Print(cmd.ErrOrStderr())

			if err := res.Diagnostics.Error(); err != nil {
				return err
			}

			generator := gen.NewGenerator(gen.GeneratorConfig{
				PackageName:      opts.packageName,
				OutputDir:        opts.outputDir,
				WireImport:       opts.wireImport,
				GenerateComments: opts.comments,
			})

			files, err := generator.Generate(res)
			if err != nil {
				return err
			}

			if err := gen.WriteFiles(files, opts.outputDir); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d file(s) to %s\n", len(files), opts.outputDir)

			return nil
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

// checkCommand resolves and validates without writing anything, for CI.
func checkCommand() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "check",
		Short: "resolve strategies and report diagnostics without generating",
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := resolve(&opts)
			if err != nil {
				return err
			}

			res.Diagnostics.Print(cmd.ErrOrStderr())

			return res.Diagnostics.Error()
		},
	}

	opts.bindFlags(cmd)

	return cmd
}

// resolve loads the definition, assembles the metadata side channel,
// and runs the resolver.
func resolve(opts *generateOptions) (*plan.Result, error) {
	def, err := descriptor.LoadDefinition(opts.definition)
	if err != nil {
		return nil, err
	}

	side, err := sideChannel(opts)
	if err != nil {
		return nil, err
	}

	namespace := opts.namespace
	if namespace == "" {
		namespace = def.Namespace
	}

	resolver := &plan.Resolver{
		Side:       side,
		Namespace:  namespace,
		Primitives: shape.WithPrimitives(def.Primitives...),
		Enums:      def.EnumNames(),
		Wrappers:   def.Wrappers,
	}

	res := resolver.Resolve(def.Aggregates, def.Enums)

	return &res, nil
}

// sideChannel assembles the optionality sources in lookup order:
// schema scan, explicit table, environment.
func sideChannel(opts *generateOptions) (metadata.Source, error) {
	var sources metadata.Multi

	if len(opts.protoFiles) > 0 {
		table, err := metadata.ScanProtoFiles(opts.protoFiles...)
		if err != nil {
			return nil, err
		}

		sources = append(sources, table)
	}

	if opts.fieldMeta != "" {
		table, err := metadata.LoadYAML(opts.fieldMeta)
		if err != nil {
			return nil, err
		}

		sources = append(sources, table)
	}

	if opts.envMeta {
		sources = append(sources, metadata.EnvSource{Prefix: opts.envPrefix})
	}

	if len(sources) == 0 {
		return nil, nil
	}

	return sources, nil
}
