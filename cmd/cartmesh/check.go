package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cartmesh/cartmesh/foam"
	"github.com/cartmesh/cartmesh/meshcase"
	"github.com/cartmesh/cartmesh/meshio"
)

var (
	checkMeshFile   string
	checkInstallDir string
	checkProcesses  int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check external tools and generated meshes",
	Long: `Verifies that the external meshing toolchain is installed and usable.
With --mesh, additionally reads a generated mesh file back, reports its
statistics and previews the processor decomposition.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkMeshFile, "mesh", "", "generated mesh file to verify (.msh, .neu, .su2)")
	checkCmd.Flags().StringVar(&checkInstallDir, "install-dir", "", "toolchain installation directory (default: auto-detect)")
	checkCmd.Flags().IntVar(&checkProcesses, "processes", 1, "processor count for the decomposition preview")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	env, err := foam.NewEnv(checkInstallDir, slog.Default())
	if err != nil {
		slog.Warn("no toolchain installation found", "err", err)
	}
	if report := foam.CheckDependencies(cmd.Context(), env); report != "" {
		cmd.Print(report)
	} else {
		cmd.Println("all dependency checks passed")
	}

	if checkMeshFile == "" {
		return nil
	}
	info, err := meshio.ReadInfo(checkMeshFile)
	if err != nil {
		return err
	}
	cmd.Println(info.String())
	if err := info.Check(); err != nil {
		return err
	}

	if checkProcesses > 1 {
		layout, err := meshcase.PlanDecomposition(info, checkProcesses)
		if err != nil {
			return err
		}
		cmd.Printf("decomposition over %d processors: %v cells, imbalance %.3f\n",
			layout.NumProcessors, layout.Counts(), layout.Imbalance())
	}
	return nil
}
