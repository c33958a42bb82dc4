package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cartmesh/cartmesh/config"
	"github.com/cartmesh/cartmesh/meshcase"
)

var writeCaseCmd = &cobra.Command{
	Use:   "write-case",
	Short: "Assemble the mesh case directory",
	Long: `Builds the geometry document from the configuration, processes the
refinement definitions and writes the case directory with surfaces,
dictionaries and the Allmesh run script.`,
	Args: cobra.NoArgs,
	RunE: runWriteCase,
}

func init() {
	rootCmd.AddCommand(writeCaseCmd)
}

// loadCase builds the mesh case builder from the configuration file.
func loadCase(path string) (*meshcase.Builder, *config.File, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	doc, err := f.BuildDocument()
	if err != nil {
		return nil, nil, err
	}
	settings, err := f.Settings()
	if err != nil {
		return nil, nil, err
	}
	refinements, err := f.Refinements()
	if err != nil {
		return nil, nil, err
	}
	b, err := meshcase.NewBuilder(doc, f.Part, settings, refinements, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return b, f, nil
}

func runWriteCase(cmd *cobra.Command, args []string) error {
	b, _, err := loadCase(configPath)
	if err != nil {
		return err
	}
	if err := b.WriteCase(); err != nil {
		return err
	}
	cmd.Printf("case written to %s\n", b.Paths().Root)
	return nil
}
