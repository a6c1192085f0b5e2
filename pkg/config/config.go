package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig holds derived runtime key sets other packages query at
// request time (populated during startup after merging file+env).
type RuntimeConfig struct {
	BackendKeys  map[string]struct{}
	FrontendKeys map[string]struct{}
	AdminKeys    map[string]struct{}
	SigningKeys  map[string]struct{}
}

var (
	runtimeMu  sync.RWMutex
	runtimeCfg *RuntimeConfig
)

// SetRuntime sets the canonical runtime config used by the running server.
func SetRuntime(rc *RuntimeConfig) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeCfg = rc
}

// GetSigningKeys returns a copy of configured signing keys.
func GetSigningKeys() map[string]struct{} {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	out := map[string]struct{}{}
	if runtimeCfg == nil {
		return out
	}
	for k := range runtimeCfg.SigningKeys {
		out[k] = struct{}{}
	}
	return out
}

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr   string
	DB     string
	Config string
	Set    map[string]bool
}

// ParseFlags parses command-line flags for the storage service.
func ParseFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.pagethread", "Pebble DB path")
	cfgPtr := flag.String("config", "./pagethread.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Config: *cfgPtr, Set: setFlags}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv overlays PAGETHREAD_* environment variables onto cfg and
// reports whether any were used.
func applyEnv(cfg *Config) bool {
	used := false
	if v := os.Getenv("PAGETHREAD_ADDR"); v != "" {
		used = true
		host, port, ok := strings.Cut(v, ":")
		if ok {
			cfg.Server.Address = host
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Server.Port = p
			}
		} else {
			cfg.Server.Address = v
		}
	}
	if v := os.Getenv("PAGETHREAD_DB_PATH"); v != "" {
		used = true
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("PAGETHREAD_LOG_LEVEL"); v != "" {
		used = true
		cfg.Logging.Level = v
	}
	parseList := func(v string) []string {
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	if v := os.Getenv("PAGETHREAD_BACKEND_KEYS"); v != "" {
		used = true
		cfg.Security.APIKeys.Backend = parseList(v)
	}
	if v := os.Getenv("PAGETHREAD_FRONTEND_KEYS"); v != "" {
		used = true
		cfg.Security.APIKeys.Frontend = parseList(v)
	}
	if v := os.Getenv("PAGETHREAD_ADMIN_KEYS"); v != "" {
		used = true
		cfg.Security.APIKeys.Admin = parseList(v)
	}
	return used
}

// LoadEffective loads the config file (when present), applies env
// overrides and returns the effective config plus whether env was used.
// A missing file is not an error; env and defaults still apply.
func LoadEffective(path string) (*Config, bool, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, false, err
			}
		} else {
			cfg = loaded
		}
	}
	envUsed := applyEnv(cfg)
	return cfg, envUsed, nil
}

// Runtime builds the runtime key registry from an effective config.
// Backend keys double as signing keys for the signed-author scheme.
func (c *Config) Runtime() *RuntimeConfig {
	rc := &RuntimeConfig{
		BackendKeys:  map[string]struct{}{},
		FrontendKeys: map[string]struct{}{},
		AdminKeys:    map[string]struct{}{},
		SigningKeys:  map[string]struct{}{},
	}
	for _, k := range c.Security.APIKeys.Backend {
		rc.BackendKeys[k] = struct{}{}
		rc.SigningKeys[k] = struct{}{}
	}
	for _, k := range c.Security.APIKeys.Frontend {
		rc.FrontendKeys[k] = struct{}{}
	}
	for _, k := range c.Security.APIKeys.Admin {
		rc.AdminKeys[k] = struct{}{}
		rc.SigningKeys[k] = struct{}{}
	}
	return rc
}
