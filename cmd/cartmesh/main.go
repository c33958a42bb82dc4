// cartmesh CLI - writes and inspects mesh cases for the external
// meshing utilities.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cartmesh/cartmesh/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "cartmesh",
	Short: "Mesh case generation for CFD",
	Long: `cartmesh assembles mesh cases (cfMesh, snappyHexMesh or gmsh) from a
geometry document and refinement definitions, re-associating stored
geometry references onto the meshed part by geometric identity.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log := logging.New(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Format: logging.Format(logFormat),
		})
		slog.SetDefault(log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cartmesh.yaml", "case configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
