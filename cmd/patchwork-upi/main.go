// Command patchwork-upi runs the Patchwork search engine as a UPI
// protocol handler over stdin/stdout, the Patchwork analogue of the
// teacher's own UCI binary entrypoint.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/nzeitz/patchwork/internal/engine"
	"github.com/nzeitz/patchwork/internal/neural"
	"github.com/nzeitz/patchwork/internal/storage"
	"github.com/nzeitz/patchwork/internal/upi"
)

// defaultWeightsFile is the policy/value network's on-disk name, the
// Patchwork analogue of the teacher's Stockfish-compatible .nnue names.
const defaultWeightsFile = "patchwork.weights"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eval := engine.DefaultStaticWeights()

	// 64MB transposition table, Lazy-SMP search across all logical CPUs.
	eng := engine.NewEngine(64, eval)

	if net, err := autoLoadWeights(); err != nil {
		log.Printf("policy/value weights not loaded: %v (using static evaluation)", err)
	} else {
		eng.SetEvaluator(neural.NewEvaluator(net))
		log.Printf("policy/value weights loaded")
	}

	protocol := upi.New(eng)
	protocol.Run()
}

// autoLoadWeights searches the standard weights directories in order of
// preference and returns the first loadable network, the Patchwork
// analogue of the teacher's dual-file NNUE auto-load (single-file here:
// the policy/value network has no separate big/small variants).
func autoLoadWeights() (*neural.Network, error) {
	searchPaths := []string{"./weights", "."}
	if dir, err := storage.GetWeightsDir(); err == nil {
		searchPaths = append([]string{dir}, searchPaths...)
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultWeightsFile)
		if !fileExists(path) {
			continue
		}
		net := neural.NewNetwork()
		if err := net.LoadWeights(path); err != nil {
			log.Printf("failed to load weights from %s: %v", path, err)
			continue
		}
		return net, nil
	}

	return nil, os.ErrNotExist
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
