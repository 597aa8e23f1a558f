// Command civs-repl is an interactive line-oriented shell over a
// CivMap[string,string]: put/get/del/contains/stats/save/load.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/tailscale/hujson"

	"github.com/merl-twin/collections"
	"github.com/merl-twin/collections/internal/snapshot"
)

type replConfig struct {
	SlotSize   int     `json:"slotSize"`
	TombsLimit float64 `json:"tombsLimit"`
}

func defaultReplConfig() replConfig {
	return replConfig{SlotSize: 64, TombsLimit: 0.5}
}

// loadReplConfig reads a HuJSON (JSON-with-comments) config file, falling
// back to defaults if path is empty.
func loadReplConfig(path string) (replConfig, error) {
	cfg := defaultReplConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	std, err := hujson.Standardize(raw)
	if err != nil {
		return cfg, fmt.Errorf("civs-repl: parsing config: %w", err)
	}
	if err := json.Unmarshal(std, &cfg); err != nil {
		return cfg, fmt.Errorf("civs-repl: decoding config: %w", err)
	}
	return cfg, nil
}

// session pairs the cascade (for put/get/del/contains/stats) with a plain
// mirror map the REPL itself maintains for save/load. civs knows nothing
// about serialization, so the persistence demo works from state the shell
// tracks on its own, not from any cascade-internal traversal.
type session struct {
	m      *civs.CivMap[string, string]
	mirror map[string]string
}

func newSession(cfg replConfig) *session {
	return &session{
		m: civs.NewMap[string, string](
			civs.OptSlotSize(cfg.SlotSize),
			civs.OptTombsLimit(cfg.TombsLimit),
		),
		mirror: make(map[string]string),
	}
}

func main() {
	var configPath string
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := loadReplConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sess := newSession(cfg)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("civs> ")
		if err != nil {
			break
		}
		line.AppendHistory(input)
		if !sess.dispatch(strings.TrimSpace(input)) {
			break
		}
	}
}

func (s *session) dispatch(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "quit", "exit":
		return false
	case "put":
		if len(fields) != 3 {
			fmt.Println("usage: put <key> <value>")
			return true
		}
		_, had := s.m.Insert(fields[1], fields[2])
		s.mirror[fields[1]] = fields[2]
		fmt.Printf("ok had_prior=%v\n", had)
	case "get":
		if len(fields) != 2 {
			fmt.Println("usage: get <key>")
			return true
		}
		v, ok := s.m.Get(fields[1])
		if !ok {
			fmt.Println("not found")
			return true
		}
		fmt.Println(v)
	case "del":
		if len(fields) != 2 {
			fmt.Println("usage: del <key>")
			return true
		}
		_, ok := s.m.Remove(fields[1])
		delete(s.mirror, fields[1])
		fmt.Printf("removed=%v\n", ok)
	case "contains":
		if len(fields) != 2 {
			fmt.Println("usage: contains <key>")
			return true
		}
		fmt.Println(s.m.Contains(fields[1]))
	case "stats":
		fmt.Println(s.m.Stats().String())
	case "save":
		if len(fields) != 2 {
			fmt.Println("usage: save <path>")
			return true
		}
		if err := snapshot.Save(fields[1], s.mirror); err != nil {
			fmt.Println(err)
		}
	case "load":
		if len(fields) != 2 {
			fmt.Println("usage: load <path>")
			return true
		}
		entries, err := snapshot.Load(fields[1])
		if err != nil {
			fmt.Println(err)
			return true
		}
		for k, v := range entries {
			s.m.Insert(k, v)
			s.mirror[k] = v
		}
		fmt.Printf("loaded %d entries\n", len(entries))
	default:
		fmt.Println("commands: put get del contains stats save load quit")
	}
	return true
}
