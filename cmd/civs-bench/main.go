// Command civs-bench drives a CivMap through a configurable random
// insert/remove workload and reports timing and cascade layout stats.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/merl-twin/collections"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flagSet := flag.NewFlagSet("civs-bench", flag.ContinueOnError)
	slotSize := flagSet.Int("slot-size", 64, "write buffer capacity (power of two)")
	tombsLimit := flagSet.Float64("tombs-limit", 0.5, "tombstone density threshold in (0,1)")
	count := flagSet.IntP("count", "n", 1_000_000, "number of operations to run")
	removeFrac := flagSet.Float64("remove-frac", 0.2, "fraction of operations that are removes")
	seed := flagSet.Int64("seed", 1, "random seed")
	verbose := flagSet.BoolP("verbose", "v", false, "enable debug logging of promotions and compactions")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var logger *zap.Logger
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		logger = l
	} else {
		logger = zap.NewNop()
	}
	defer logger.Sync() //nolint:errcheck

	m := civs.NewMap[int64, int64](
		civs.OptSlotSize(*slotSize),
		civs.OptTombsLimit(*tombsLimit),
		civs.OptLogger(logger),
	)

	rng := rand.New(rand.NewSource(*seed))
	keySpace := int64(*count) / 2
	if keySpace < 1 {
		keySpace = 1
	}

	start := time.Now()
	for i := 0; i < *count; i++ {
		k := rng.Int63n(keySpace)
		if rng.Float64() < *removeFrac {
			m.Remove(k)
		} else {
			m.Insert(k, k)
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("ops=%d elapsed=%s ops/sec=%.0f\n", *count, elapsed, float64(*count)/elapsed.Seconds())
	fmt.Println(m.Stats().String())
	return 0
}
