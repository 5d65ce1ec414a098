package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/uniformat-db/internal/common"
)

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "uniformat",
		Short: "Build a Uniformat II code database enriched from the reference guide",
		Long: `uniformat loads the Uniformat II code hierarchy from a spreadsheet, mines the reference
PDF for each Level 3 element's inclusions and exclusions with a generative model, and writes
model-generated descriptions back into the database.

Configuration comes from --config (YAML), a .env file and UNIFORMAT_* environment variables;
flags win over all of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return withCode(exitUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&a.opts.dsn, "db", "", "Database DSN: sqlite file path or postgres:// URL (default uniformat.db)")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.opts.logFormat, "log-format", "", "Log format: json or text")
	pf.StringVar(&a.opts.provider, "provider", "", "Model provider: gemini or openai")
	pf.StringVar(&a.opts.model, "model", "", "Model id (default per provider)")

	root.AddCommand(
		newInitDBCmd(a),
		newLoadCodesCmd(a),
		newExtractCmd(a),
		newDescribeCmd(a),
		newExportCmd(a),
		newRunCmd(a),
		newDBHealthCmd(a),
		newPDFTextCmd(a),
	)
	return root
}

// setup loads config and opens the database for a command.
func (a *app) setup(cmd *cobra.Command, requireLLM bool) error {
	if err := a.load(requireLLM, flagChanged(cmd)); err != nil {
		return err
	}
	return a.openDB(cmd.Context())
}

func flagChanged(cmd *cobra.Command) func(string) bool {
	return func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
}

// noArgs is cobra.NoArgs with a usage exit code.
func noArgs(cmd *cobra.Command, args []string) error {
	return withCode(exitUsage, cobra.NoArgs(cmd, args))
}

// usage turns collected flag validation failures into a usage error.
func usage(v *common.Validator) error {
	return withCode(exitUsage, v.Error())
}
