package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/proxyfig/proxyfig/pkg/location"
	"github.com/proxyfig/proxyfig/pkg/pipeline"
	"github.com/proxyfig/proxyfig/pkg/subscription"
	"github.com/proxyfig/proxyfig/utils"
	"github.com/proxyfig/proxyfig/utils/customlog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ConvertCmd represents the convert command
var ConvertCmd = newConvertCommand()

// newConvertCommand creates and returns the convert command
func newConvertCommand() *cobra.Command {
	config := &Config{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Converts share links into sing-box configurations (plain and fragment)",
		Long: `Reads share links line by line (blank lines and lines starting with // are ignored),
labels every server with its country and writes two sing-box configurations:
a plain one and one whose TLS outbounds carry a fragment block.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.ConfigFile != "" {
				if err := applyFileConfig(cmd, config); err != nil {
					return err
				}
			}
			if err := validateConfig(config); err != nil {
				return err
			}
			return run(cmd.Context(), config)
		},
	}

	addFlags(cmd, config)
	return cmd
}

// addFlags adds command-line flags to the command
func addFlags(cmd *cobra.Command, config *Config) {
	flags := cmd.Flags()

	flags.StringVarP(&config.Input, "file", "f", "configs/proxy.txt", "Read config links from a file")
	flags.BoolVarP(&config.ReadFromSTDIN, "stdin", "i", false, "Read config links from STDIN")
	flags.StringVarP(&config.Subscription, "sub", "s", "", "Read config links from a subscription url")
	flags.StringVar(&config.SubFingerprint, "sub-fingerprint", "", "Browser TLS fingerprint used to fetch the subscription, e.g. chrome")
	flags.StringVarP(&config.Output, "out", "o", "configs/singbox_configs.json", "Output file of the plain configuration, - means stdout")
	flags.StringVarP(&config.FragmentOutput, "fragment-out", "g", "configs/singbox_frg_configs.json", "Output file of the fragment configuration, - means stdout")
	flags.StringVarP(&config.Report, "report", "r", "", "Write a per-line CSV report to this file")
	flags.StringVar(&config.GeoIPDB, "geoip", "", "Use a local GeoIP2/GeoLite2 country database instead of ip-api.com")
	flags.StringVar(&config.LookupURL, "lookup-url", location.DefaultIPAPIBaseURL, "Base URL of the ip-api compatible service")
	flags.IntVarP(&config.Workers, "thread", "t", pipeline.DefaultWorkers, "Number of concurrent location lookups")
	flags.IntVar(&config.TimeoutMs, "timeout", int(location.DefaultTimeout.Milliseconds()), "Location lookup timeout in milliseconds")
	flags.StringVarP(&config.ConfigFile, "config", "c", "", "YAML file with default values for these flags")
	flags.BoolVarP(&config.Verbose, "verbose", "v", false, "Verbose output")
}

func run(ctx context.Context, cfg *Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Output == "-" || cfg.FragmentOutput == "-" || cfg.Report == "-" {
		customlog.SetOutput(color.Error)
	}

	lines, err := readInput(ctx, cfg)
	if err != nil {
		return err
	}

	lookup, closeLookup, err := newCountryLookup(cfg)
	if err != nil {
		return err
	}
	defer closeLookup()

	resolver := location.NewResolver(location.NewDNSResolver(), lookup)
	resolver.Timeout = cfg.Timeout()
	resolver.Verbose = cfg.Verbose

	customlog.Printf(customlog.Processing, "Converting %d lines with %d threads...\n", len(lines), cfg.Workers)

	p := pipeline.New(pipeline.Options{
		Locator: resolver,
		Workers: cfg.Workers,
		Verbose: cfg.Verbose,
	})
	res, err := p.Run(ctx, lines)
	if res != nil && cfg.Report != "" {
		if werr := writeReport(cfg.Report, res.Report); werr != nil {
			customlog.Printf(customlog.Warning, "Failed to write report: %v\n", werr)
		}
	}
	if errors.Is(err, pipeline.ErrNoValidConfigs) {
		customlog.Printf(customlog.Failure, "No valid configs were converted to Sing-box format.\n")
		return err
	}
	if err != nil {
		return err
	}

	customlog.Printf(customlog.Info, "%d converted, %d skipped\n", res.Report.Converted(), res.Report.Skipped())

	// Marshal both documents before writing anything.
	plain, err := res.Plain.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal plain configuration: %w", err)
	}
	fragment, err := res.Augmented.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal fragment configuration: %w", err)
	}

	for _, out := range []struct {
		path string
		data []byte
	}{
		{cfg.Output, plain},
		{cfg.FragmentOutput, fragment},
	} {
		if err := writeOutput(out.path, out.data); err != nil {
			return fmt.Errorf("failed to save %s: %w", out.path, err)
		}
		if out.path != "-" {
			customlog.Printf(customlog.Success, "Successfully generated %s\n", out.path)
		}
	}

	customlog.Printf(customlog.Finished, "A total of %d outbounds have been written\n", len(res.Plain.Proxies()))
	return nil
}

// readInput reads links from stdin, a subscription or the input file, in
// that order of preference.
func readInput(ctx context.Context, cfg *Config) ([]string, error) {
	if cfg.Subscription != "" && !cfg.ReadFromSTDIN {
		sub := subscription.Subscription{URL: cfg.Subscription, Fingerprint: cfg.SubFingerprint}
		lines, err := sub.FetchAll(ctx)
		if err != nil {
			customlog.Printf(customlog.Failure, "Couldn't fetch the subscription: %v\n", err)
			return nil, err
		}
		return lines, nil
	}

	input := cfg.Input
	if cfg.ReadFromSTDIN {
		input = "-"
	}
	lines, err := utils.ParseFileByNewline(input)
	if err != nil {
		customlog.Printf(customlog.Failure, "Input file not found: %s\n", input)
		return nil, err
	}
	return lines, nil
}

func newCountryLookup(cfg *Config) (location.CountryLookup, func(), error) {
	if cfg.GeoIPDB != "" {
		g, err := location.OpenGeoIP(cfg.GeoIPDB)
		if err != nil {
			return nil, nil, err
		}
		return g, func() { g.Close() }, nil
	}
	return location.NewIPAPILookup(cfg.LookupURL, cfg.Timeout()), func() {}, nil
}

func writeOutput(path string, data []byte) error {
	if path != "-" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return utils.WriteIntoFile(path, data)
}

func writeReport(path string, report pipeline.Report) error {
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf); err != nil {
		return err
	}
	if err := writeOutput(path, buf.Bytes()); err != nil {
		return err
	}
	if path != "-" {
		customlog.Printf(customlog.Success, "Report has been saved to %s\n", path)
	}
	return nil
}
