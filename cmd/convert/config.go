package convert

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds all command configuration options
type Config struct {
	Input          string `yaml:"input"`
	ReadFromSTDIN  bool   `yaml:"-"`
	Subscription   string `yaml:"subscription"`
	SubFingerprint string `yaml:"sub_fingerprint"`
	Output         string `yaml:"output"`
	FragmentOutput string `yaml:"fragment_output"`
	Report         string `yaml:"report"`
	GeoIPDB        string `yaml:"geoip_db"`
	LookupURL      string `yaml:"lookup_url"`
	Workers        int    `yaml:"workers"`
	TimeoutMs      int    `yaml:"timeout_ms"`
	Verbose        bool   `yaml:"verbose"`
	ConfigFile     string `yaml:"-"`
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// validateConfig validates the configuration options
func validateConfig(cfg *Config) error {
	if cfg.Workers < 1 {
		return fmt.Errorf("thread count must be at least 1")
	}
	if cfg.TimeoutMs < 1 {
		return fmt.Errorf("lookup timeout must be positive")
	}
	if cfg.Output == "" || cfg.FragmentOutput == "" {
		return fmt.Errorf("both output paths are required")
	}
	if cfg.Output == cfg.FragmentOutput && cfg.Output != "-" {
		return fmt.Errorf("plain and fragment outputs must differ")
	}
	if cfg.Input == "" && !cfg.ReadFromSTDIN && cfg.Subscription == "" {
		return fmt.Errorf("no input: pass --file, --stdin or --sub")
	}
	return nil
}

// applyFileConfig loads a YAML config file into cfg. Flags given on the
// command line keep their value.
func applyFileConfig(cmd *cobra.Command, cfg *Config) error {
	data, err := os.ReadFile(cfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fc := *cfg
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", cfg.ConfigFile, err)
	}

	flags := cmd.Flags()
	apply := func(flag string, set func()) {
		if !flags.Changed(flag) {
			set()
		}
	}
	apply("file", func() { cfg.Input = fc.Input })
	apply("sub", func() { cfg.Subscription = fc.Subscription })
	apply("sub-fingerprint", func() { cfg.SubFingerprint = fc.SubFingerprint })
	apply("out", func() { cfg.Output = fc.Output })
	apply("fragment-out", func() { cfg.FragmentOutput = fc.FragmentOutput })
	apply("report", func() { cfg.Report = fc.Report })
	apply("geoip", func() { cfg.GeoIPDB = fc.GeoIPDB })
	apply("lookup-url", func() { cfg.LookupURL = fc.LookupURL })
	apply("thread", func() { cfg.Workers = fc.Workers })
	apply("timeout", func() { cfg.TimeoutMs = fc.TimeoutMs })
	apply("verbose", func() { cfg.Verbose = fc.Verbose })
	return nil
}
