package main

import (
	"flag"
	"fmt"
	"log"
	"mcl-sim/internal/config"
	"mcl-sim/internal/report"
	"mcl-sim/internal/simulation"
	"mcl-sim/internal/visualization"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML scene/config file (built-in maze when empty)")
	headless := flag.Bool("headless", false, "run without a window and print state every step")
	numSteps := flag.Int("steps", 300, "number of ticks for a headless run")
	seed := flag.Uint64("seed", 0, "random seed, overrides the config file (0 keeps the config value)")
	targetFlag := flag.String("target", "", "initial target as x,y")
	plotPath := flag.String("plot", "", "write trajectory and error charts to this PNG after a headless run")
	autostart := flag.Bool("autostart", false, "start running instead of paused")
	flag.Parse()

	// --- Configuration ---
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// --- Create Simulation ---
	sc, err := cfg.BuildScene()
	if err != nil {
		log.Fatalf("Error building scene: %v", err)
	}
	sim, err := simulation.NewSimulation(sc, simulation.ParamsFromConfig(cfg), simulation.NewRand(cfg.Seed))
	if err != nil {
		log.Fatalf("Error creating simulation: %v", err)
	}

	if *targetFlag != "" {
		x, y, err := parsePoint(*targetFlag)
		if err != nil {
			log.Fatalf("Invalid -target: %v", err)
		}
		if err := sim.SetTarget(x, y); err != nil {
			log.Fatalf("Error setting target: %v", err)
		}
	}
	if *autostart {
		sim.TogglePause()
	}

	if *headless {
		runHeadless(sim, *numSteps, *plotPath)
		return
	}

	// --- UI ---
	ebiten.SetWindowSize(int(sc.Width()), int(sc.Height()))
	ebiten.SetWindowTitle("Monte Carlo Localization")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if ms := cfg.Motion.TickInterval.Milliseconds(); ms > 0 {
		ebiten.SetTPS(max(int(1000/ms), 1))
	}
	if err := ebiten.RunGame(visualization.NewRenderer(sim)); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(sim *simulation.Simulation, numSteps int, plotPath string) {
	recorder := report.NewRecorder()
	if err := sim.Run(numSteps, recorder.Record); err != nil {
		log.Printf("Simulation stopped: %v", err)
	}
	fmt.Printf("Mean localization error over %d ticks: %.3f\n", len(recorder.Samples()), recorder.MeanError())

	if plotPath == "" {
		return
	}
	sc := sim.Scene()
	if err := recorder.SaveTrajectory(plotPath, sc.Width(), sc.Height()); err != nil {
		log.Fatalf("Error writing trajectory plot: %v", err)
	}
	errorPath := strings.TrimSuffix(plotPath, ".png") + "-error.png"
	if err := recorder.SaveError(errorPath); err != nil {
		log.Fatalf("Error writing error plot: %v", err)
	}
	fmt.Printf("Plots written to %s and %s\n", plotPath, errorPath)
}

func parsePoint(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing y: %w", err)
	}
	return x, y, nil
}
