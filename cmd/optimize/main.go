// Package main tunes ant and field parameters with CMA-ES so a swarm tracks
// a trail-laying cursor while the trail stays readable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/stigmergy/config"
	"github.com/pthm-cable/stigmergy/telemetry"
)

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// EvalRecord is one row of optimize_log.csv.
type EvalRecord struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	Tracking      float64 `csv:"tracking"`
	MaxSpeed      float64 `csv:"max_speed"`
	MaxForce      float64 `csv:"max_force"`
	AntennaFwd    float64 `csv:"antenna_forward"`
	AntennaSpread float64 `csv:"antenna_spread"`
	DiffusionRate float64 `csv:"diffusion_rate"`
	DecayRate     float64 `csv:"decay_rate"`
	DepositAmount float64 `csv:"deposit_amount"`
}

func newEvalRecord(eval int, fitness, tracking float64, v []float64) EvalRecord {
	return EvalRecord{
		Eval:          eval,
		Fitness:       fitness,
		Tracking:      tracking,
		MaxSpeed:      v[0],
		MaxForce:      v[1],
		AntennaFwd:    v[2],
		AntennaSpread: v[3],
		DiffusionRate: v[4],
		DecayRate:     v[5],
		DepositAmount: v[6],
	}
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 0, "Ticks per run (0 = scenario default)")
	ants := flag.Int("ants", 0, "Ants per run (0 = scenario default)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	scenario := DefaultScenario()
	if *ticks > 0 {
		scenario.Ticks = int32(*ticks)
	}
	if *ants > 0 {
		scenario.Ants = *ants
	}

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, scenario, evalSeeds, baseCfg)

	dim := params.Dim()
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Sequential evaluation; seeds already run in parallel
	}

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			// Log clamped values (these are the values actually used)
			rec := []EvalRecord{newEvalRecord(evalCount, fitness, evaluator.LastQuality(), clamped)}
			if evalCount == 1 {
				err = gocsv.Marshal(rec, logFile)
			} else {
				err = gocsv.MarshalWithoutHeaders(rec, logFile)
			}
			if err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval

			fmt.Printf("Eval %d/%d: fitness=%.4f tracking=%.3f (best=%.4f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, evaluator.LastQuality(), bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		dim, popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, ticks per run: %d, ants: %d\n", *seeds, scenario.Ticks, scenario.Ants)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Use best params found (may be from any evaluation, not just final)
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		log.Fatal("no evaluations completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best fitness: %.4f\n", bestFitness)

	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, bestParams)

	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOutPath)
	}

	// Replay the best parameters with full telemetry output
	runDir := filepath.Join(*outputDir, "best_run")
	output, err := telemetry.NewOutputManager(runDir)
	if err != nil {
		log.Printf("failed to create best run output: %v", err)
		return
	}
	defer output.Close()
	if r := evaluator.runSimulation(bestParams, evalSeeds[0], output); r.err != nil {
		log.Printf("best run failed: %v", r.err)
	} else {
		fmt.Printf("Best run telemetry saved to: %s\n", runDir)
	}
}
