package commands

import (
	"fmt"
	"log"
	"math"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/spheregrid/decomp"
	"github.com/notargets/spheregrid/gridreg"
	"github.com/notargets/spheregrid/meshsource"
)

// InspectCmd builds the decomposition and reports it
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Build and report a block decomposition",
	Long: `
Builds the block index table and registers the unstructured I/O grids,
either from a mesh file (gambit/gmsh/su2, partitioned with METIS) or from
a synthetic contiguous layout, then prints the decomposition summary.

spheregrid inspect --mesh cube.neu --tasks 8
spheregrid inspect --tasks 4 --cols 10 --yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		meshFile := viper.GetString("mesh")
		tasks := viper.GetInt("tasks")
		cols := viper.GetInt("cols")
		levels := viper.GetInt("levels")
		asYaml, _ := cmd.Flags().GetBool("yaml")

		var (
			d   *meshsource.Decomposed
			err error
		)
		if meshFile != "" {
			d, err = meshsource.FromMeshFile(meshFile, tasks, levels)
		} else {
			d, err = meshsource.Synthetic(tasks, cols, levels)
		}
		if err != nil {
			log.Fatalf("building decomposition: %v", err)
		}

		layout, err := decomp.NewBlockLayout(d.Mesh.NumCellsGlobal, d.OwnedColumns)
		if err != nil {
			log.Fatalf("inconsistent partition: %v", err)
		}
		qs, err := decomp.NewQueryService(layout, d.Mesh)
		if err != nil {
			log.Fatalf("query service: %v", err)
		}

		reg := gridreg.NewMemoryRegistrar()
		cells, edges, verts, err := d.NodeSets(0)
		if err != nil {
			log.Fatalf("gathering node sets: %v", err)
		}
		if err := gridreg.NewRegistry(reg).RegisterAll(cells, edges, verts); err != nil {
			log.Fatalf("grid registration: %v", err)
		}

		sum := summarize(qs, reg)
		if asYaml {
			data, err := yaml.Marshal(sum)
			if err != nil {
				log.Fatalf("encoding summary: %v", err)
			}
			fmt.Print(string(data))
			return
		}
		sum.Print()
	},
}

func init() {
	rootCmd.AddCommand(InspectCmd)
	InspectCmd.Flags().StringP("mesh", "m", "", "mesh file to decompose (empty = synthetic layout)")
	InspectCmd.Flags().IntP("tasks", "t", 4, "number of tasks / blocks")
	InspectCmd.Flags().IntP("cols", "c", 10, "columns per task for the synthetic layout")
	InspectCmd.Flags().IntP("levels", "l", 32, "vertical midpoint levels")
	InspectCmd.Flags().Bool("yaml", false, "emit the summary as YAML")
	viper.BindPFlag("mesh", InspectCmd.Flags().Lookup("mesh"))
	viper.BindPFlag("tasks", InspectCmd.Flags().Lookup("tasks"))
	viper.BindPFlag("cols", InspectCmd.Flags().Lookup("cols"))
	viper.BindPFlag("levels", InspectCmd.Flags().Lookup("levels"))
}

// Summary is the printable/encodable view of a decomposition
type Summary struct {
	NumBlocks       int     `yaml:"NumBlocks"`
	NumColumns      int     `yaml:"NumColumns"`
	NumEdges        int     `yaml:"NumEdges"`
	NumVertices     int     `yaml:"NumVertices"`
	LevelInterfaces int     `yaml:"LevelInterfaces"`
	MinColumns      int     `yaml:"MinColumns"`
	MaxColumns      int     `yaml:"MaxColumns"`
	AvgColumns      float64 `yaml:"AvgColumns"`
	Imbalance       float64 `yaml:"Imbalance"`

	Grids []GridSummary `yaml:"Grids"`
}

// GridSummary describes one registered I/O grid
type GridSummary struct {
	Name      string `yaml:"Name"`
	DecompTag string `yaml:"DecompTag"`
	Dim       string `yaml:"Dim"`
	Global    int    `yaml:"Global"`
	LocalOwns int    `yaml:"LocalOwns"`
}

func summarize(qs *decomp.QueryService, reg *gridreg.MemoryRegistrar) *Summary {
	first, last := qs.BlockBounds()
	s := &Summary{
		NumBlocks:   last - first + 1,
		NumColumns:  qs.Mesh.NumCellsGlobal,
		NumEdges:    qs.Mesh.NumEdgesGlobal,
		NumVertices: qs.Mesh.NumVerticesGlobal,
		MinColumns:  math.MaxInt32,
	}
	s.LevelInterfaces = qs.LevelCount(first, 1)

	total := 0
	for b := first; b <= last; b++ {
		n := qs.ColumnCount(b)
		total += n
		if n < s.MinColumns {
			s.MinColumns = n
		}
		if n > s.MaxColumns {
			s.MaxColumns = n
		}
	}
	s.AvgColumns = float64(total) / float64(s.NumBlocks)
	s.Imbalance = float64(s.MaxColumns) / s.AvgColumns

	for _, name := range reg.Names() {
		g := reg.Grid(name)
		s.Grids = append(s.Grids, GridSummary{
			Name:      g.Name,
			DecompTag: g.DecompTag,
			Dim:       g.Lat.DimName,
			Global:    g.Lat.GlobalSize,
			LocalOwns: g.Triplets.N,
		})
	}
	return s
}

// Print writes the summary in the fixed-width style of the solver logs
func (s *Summary) Print() {
	fmt.Printf("%8d\t\t= Blocks\n", s.NumBlocks)
	fmt.Printf("%8d\t\t= Global columns\n", s.NumColumns)
	fmt.Printf("%8d\t\t= Global edges\n", s.NumEdges)
	fmt.Printf("%8d\t\t= Global vertices\n", s.NumVertices)
	fmt.Printf("%8d\t\t= Level interfaces\n", s.LevelInterfaces)
	fmt.Printf("%8d / %d\t= Min/Max columns per block\n", s.MinColumns, s.MaxColumns)
	fmt.Printf("%8.3f\t\t= Load imbalance\n", s.Imbalance)
	for _, g := range s.Grids {
		fmt.Printf("grid %-14s dim=%-10s decomp=%-16s global=%d local=%d\n",
			g.Name, g.Dim, g.DecompTag, g.Global, g.LocalOwns)
	}
}
