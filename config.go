package civs

import (
	"fmt"
	"os"
	"strconv"

	"github.com/gholt/brimutil"
	"go.uber.org/zap"
)

// Config holds the construction-time parameters of a CivSet or CivMap. It
// is built by resolveConfig from defaults, environment variables, and any
// functional options passed to NewSet/NewMap, in that order of increasing
// precedence.
type Config struct {
	// SlotSize is the write buffer's capacity S, and therefore the
	// capacity of the first run (data[0]). It must be a power of two.
	// Defaults to env CIVS_SLOT_SIZE or 64.
	SlotSize int
	// TombsLimit is the tombstone density, in the open interval (0,1),
	// above which a run touched by a merge is redistributed back into
	// lower runs. Defaults to env CIVS_TOMBS_LIMIT or 0.5.
	TombsLimit float64
	// Logger receives Debug-level entries for promotion and compaction
	// milestones. A nil Logger (the default) disables logging entirely;
	// no log call is ever made on the hot insert/get/remove path.
	Logger *zap.Logger
}

func resolveConfig(opts ...func(*Config)) *Config {
	cfg := &Config{}
	if env := os.Getenv("CIVS_SLOT_SIZE"); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			cfg.SlotSize = val
		}
	}
	if cfg.SlotSize <= 0 {
		cfg.SlotSize = 64
	}
	if env := os.Getenv("CIVS_TOMBS_LIMIT"); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			cfg.TombsLimit = val
		}
	}
	if cfg.TombsLimit <= 0 {
		cfg.TombsLimit = 0.5
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := cfg.validate(); err != nil {
		panic("civs: " + err.Error())
	}
	return cfg
}

// validate rejects construction parameters rather than silently clamping
// them, matching the strictness of the structure this package generalizes
// from: a miscomputed capacity schedule corrupts every invariant
// downstream, so it is better to fail loudly at construction.
func (c *Config) validate() error {
	if c.SlotSize < 1 {
		return fmt.Errorf("slot size must be positive, got %d", c.SlotSize)
	}
	if needed := brimutil.PowerOfTwoNeeded(uint64(c.SlotSize)); uint64(1)<<needed != uint64(c.SlotSize) {
		return fmt.Errorf("slot size must be a power of two, got %d", c.SlotSize)
	}
	if c.TombsLimit <= 0 || c.TombsLimit >= 1 {
		return fmt.Errorf("tombs limit must be in (0,1), got %v", c.TombsLimit)
	}
	return nil
}

// OptSlotSize sets the write buffer's capacity, which must be a power of
// two. Defaults to env CIVS_SLOT_SIZE or 64.
func OptSlotSize(n int) func(*Config) {
	return func(cfg *Config) {
		cfg.SlotSize = n
	}
}

// OptTombsLimit sets the tombstone density threshold, in the open
// interval (0,1), that triggers redistribution of a merged run.
// Defaults to env CIVS_TOMBS_LIMIT or 0.5.
func OptTombsLimit(x float64) func(*Config) {
	return func(cfg *Config) {
		cfg.TombsLimit = x
	}
}

// OptLogger attaches a zap.Logger that receives Debug-level entries for
// promotion and compaction milestones.
func OptLogger(l *zap.Logger) func(*Config) {
	return func(cfg *Config) {
		cfg.Logger = l
	}
}
