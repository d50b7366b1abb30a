package subs

import (
	"fmt"
	"strings"

	"github.com/proxyfig/proxyfig/pkg/subscription"
	"github.com/proxyfig/proxyfig/utils"
	"github.com/proxyfig/proxyfig/utils/customlog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// FetchConfig holds the configuration for the fetch command
type FetchConfig struct {
	SubscriptionURL string
	HTTPMethod      string
	UserAgent       string
	OutputFile      string
	Proxy           string
	Fingerprint     string
	Dedupe          bool
}

// FetchCommand encapsulates the fetch command functionality
type FetchCommand struct {
	config *FetchConfig
}

// NewFetchCommand creates a new instance of the fetch command
func NewFetchCommand() *cobra.Command {
	fc := &FetchCommand{
		config: &FetchConfig{},
	}
	return fc.createCommand()
}

// createCommand creates and configures the cobra command
func (fc *FetchCommand) createCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fetch",
		Short:        "Fetches all config links from a subscription to a file",
		SilenceUsage: true,
		RunE:         fc.runCommand,
	}

	fc.addFlags(cmd)
	return cmd
}

// addFlags adds command-line flags to the command
func (fc *FetchCommand) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	flags.StringVarP(&fc.config.SubscriptionURL, "url", "u", "", "The subscription url")
	flags.StringVarP(&fc.config.HTTPMethod, "method", "m", "GET", "Http method to be used")
	flags.StringVarP(&fc.config.UserAgent, "useragent", "x", "", "Useragent to be used")
	flags.StringVarP(&fc.config.OutputFile, "out", "o", "-", "The output file where the configs will be placed. - means stdout")
	flags.StringVarP(&fc.config.Proxy, "proxy", "p", "", "Proxy url to fetch the subscription through, e.g. socks5://127.0.0.1:2080")
	flags.StringVarP(&fc.config.Fingerprint, "fingerprint", "F", "", "Imitate a browser TLS handshake: chrome, firefox, edge, safari, ios, android, 360, qq or random")
	flags.BoolVarP(&fc.config.Dedupe, "dedupe", "d", false, "Remove duplicate links")

	cmd.MarkFlagRequired("url")
}

// runCommand executes the fetch command logic
func (fc *FetchCommand) runCommand(cmd *cobra.Command, args []string) error {
	if fc.config.OutputFile == "-" {
		customlog.SetOutput(color.Error)
	}

	sub := subscription.Subscription{
		URL:         strings.TrimSpace(fc.config.SubscriptionURL),
		UserAgent:   fc.config.UserAgent,
		Method:      fc.config.HTTPMethod,
		Proxy:       fc.config.Proxy,
		Fingerprint: fc.config.Fingerprint,
	}

	if _, err := sub.FetchAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to fetch configurations: %w", err)
	}
	if fc.config.Dedupe {
		sub.RemoveDuplicate(true)
	}

	if err := fc.saveConfigs(sub.ConfigLinks); err != nil {
		return fmt.Errorf("failed to save configurations: %w", err)
	}

	customlog.Printf(customlog.Success, "%d Configs have been written into %q\n",
		len(sub.ConfigLinks), fc.config.OutputFile)
	return nil
}

// saveConfigs saves the fetched configurations to a file
func (fc *FetchCommand) saveConfigs(configs []string) error {
	content := strings.Join(configs, "\n") + "\n"
	return utils.WriteIntoFile(fc.config.OutputFile, []byte(content))
}
