package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/kspanier/cosolve/internal/config"
	"github.com/kspanier/cosolve/internal/coordinator"
	"github.com/kspanier/cosolve/internal/coupling"
	"github.com/kspanier/cosolve/internal/export"
	"github.com/kspanier/cosolve/internal/fem"
	"github.com/kspanier/cosolve/internal/solver"
	"github.com/kspanier/cosolve/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	refine     int
	dt         float64
	steps      int
	initData   bool
	writeVTK   bool
	vtkDir     string
	nodeIndex  int
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cosolve",
		Short: "coupled Laplace solver with a co-simulation adapter",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".cosolve", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "execute a coupled run against the in-process coordinator",
		RunE:  runCoupled,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&refine, "refine", config.DefaultRefine, "global grid refinements")
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().IntVar(&steps, "steps", 10, "coupling window length")
	runCmd.Flags().BoolVar(&initData, "initial-data", false, "coordinator requires initial data")
	runCmd.Flags().BoolVar(&writeVTK, "vtk", false, "write a VTK file per step")
	runCmd.Flags().StringVar(&vtkDir, "vtk-dir", ".", "directory for VTK output")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the interface trace of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&nodeIndex, "node", -1, "plot one node over time instead of the final profile")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "dump run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCoupled(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("refine") {
		cfg.Solver.Refine = refine
	}
	if cmd.Flags().Changed("dt") {
		cfg.Solver.Dt = dt
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	window := steps
	session := coordinator.New(coordinator.Config{
		Dim:                2,
		Datasets:           []string{cfg.Coupling.WriteDataset, cfg.Coupling.ReadDataset},
		MaxSteps:           window,
		RequireInitialData: initData,
		Peer:               oscillatingPeer(window),
	})

	problem := solver.New(cfg, session, coupling.SingleProcess())
	fmt.Printf("solving on %d cells, %d degrees of freedom\n",
		problem.Grid().NumCells(), problem.Grid().NumDofs())

	if writeVTK {
		problem.OnStep = func(step int, t float64, grid *fem.Grid, solution []float64) error {
			name := filepath.Join(vtkDir, fmt.Sprintf("solution-%04d.vtk", step))
			return export.WriteVTK(name, grid, solution)
		}
	}

	result, err := problem.Run(context.Background())
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg.Coupling.Participant, cfg.Coupling.MeshName,
		cfg.Solver.Dt, cfg.Solver.Refine, result)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("coupled run complete"))
	fmt.Printf("  run id:          %s\n", valueStyle.Render(runID))
	fmt.Printf("  coupling steps:  %s\n", valueStyle.Render(fmt.Sprintf("%d", result.Steps)))
	fmt.Printf("  interface nodes: %s\n", valueStyle.Render(fmt.Sprintf("%d", result.InterfaceNodes)))
	fmt.Printf("  CG iterations:   %s\n", valueStyle.Render(fmt.Sprintf("%d", result.CGIterations)))

	if len(result.BoundaryTrace) > 0 {
		graph := asciigraph.Plot(result.BoundaryTrace[len(result.BoundaryTrace)-1],
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Caption("interface profile (final step)"),
		)
		fmt.Println(graph)
	}
	return nil
}

// oscillatingPeer stands in for the other participant: it supplies a smooth,
// time-varying Dirichlet value at every interface node.
func oscillatingPeer(window int) coordinator.PeerFunc {
	return func(step int, coords []float64, _ []float64) []float64 {
		n := len(coords) / 2
		values := make([]float64, n)
		phase := math.Pi * float64(step+1) / float64(window)
		for i := 0; i < n; i++ {
			y := coords[i*2+1]
			values[i] = 2 + math.Sin(phase)*(1-y*y)
		}
		return values
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMESH\tSTEPS\tNODES\tDT\tTIMESTAMP")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%s\n",
			r.ID, r.Mesh, r.Steps, r.InterfaceNodes, r.Dt,
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, trace, err := st.LoadBoundary(args[0])
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("run %s has no interface trace", args[0])
	}

	if nodeIndex >= 0 {
		if nodeIndex >= len(trace[0]) {
			return fmt.Errorf("node %d out of range (run has %d interface nodes)",
				nodeIndex, len(trace[0]))
		}
		series := make([]float64, len(trace))
		for step := range trace {
			series[step] = trace[step][nodeIndex]
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Caption(fmt.Sprintf("node %d over coupling steps", nodeIndex)),
		)
		fmt.Println(graph)
		return nil
	}

	graph := asciigraph.Plot(trace[len(trace)-1],
		asciigraph.Height(10),
		asciigraph.Width(72),
		asciigraph.Caption("interface profile (final step)"),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.LoadMetadata(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
