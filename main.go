package main

import (
	"log"
	"sync"

	"github.com/spf13/cobra"

	"github.com/vimeh/gridcore-sub002/calc"
	"github.com/vimeh/gridcore-sub002/grid"
)

var (
	cfg        Config
	configPath string

	// gridMu serializes every handler's access to the sheet state below.
	gridMu     sync.Mutex
	store      *grid.Store
	graph      *calc.Graph
	bus        *calc.Bus
	calculator *calc.Calculator
	history    *grid.History
	events     *hub
)

var rootCmd = &cobra.Command{
	Use:   "gridcore",
	Short: "A spreadsheet formula engine with an HTTP API",
	Long: `Gridcore keeps a sparse grid of cells, parses and evaluates the formulas
between them, tracks their dependencies, and recalculates downstream cells
whenever something changes.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func initEngine() {
	store = grid.NewStore()
	graph = calc.NewGraph()
	bus = calc.NewBus()
	calculator = calc.NewCalculator(store, graph, bus)
	calculator.MaxDepth = cfg.Engine.MaxDepth
	history = grid.NewHistory(cfg.Engine.HistoryLimit)
	events = newHub()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the config file")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		loaded, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		cfg = loaded
		initEngine()
	}
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evalCmd)
}
