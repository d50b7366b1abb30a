package parse

import (
	"fmt"

	"github.com/proxyfig/proxyfig/pkg/core/protocol"
	"github.com/proxyfig/proxyfig/pkg/pipeline"
	"github.com/proxyfig/proxyfig/utils"
	"github.com/proxyfig/proxyfig/utils/customlog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ParseCmd represents the parse command
var ParseCmd = newParseCommand()

func newParseCommand() *cobra.Command {
	var (
		readFromSTDIN   bool
		configLink      string
		configLinksFile string
	)

	cmd := &cobra.Command{
		Use:          "parse",
		Short:        "Gives a detailed info about the config link",
		Long:         ``,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var links []string
			switch {
			case configLink != "":
				links = []string{configLink}
			case readFromSTDIN || configLinksFile != "":
				source := configLinksFile
				if readFromSTDIN {
					source = "-"
				}
				lines, err := utils.ParseFileByNewline(source)
				if err != nil {
					return err
				}
				links = pipeline.FilterLines(lines)
			case len(args) > 0:
				links = args
			default:
				return cmd.Help()
			}
			return printDetails(cmd, protocol.NewRegistry(), links)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&readFromSTDIN, "stdin", "i", false, "Read config links from STDIN")
	flags.StringVarP(&configLink, "config", "c", "", "The config link")
	flags.StringVarP(&configLinksFile, "file", "f", "", "Read config links from a file")
	return cmd
}

func printDetails(cmd *cobra.Command, registry *protocol.Registry, links []string) error {
	if len(links) == 0 {
		customlog.Printf(customlog.Warning, "No config links to parse\n")
		return nil
	}

	out := cmd.OutOrStdout()
	d := color.New(color.FgCyan, color.Bold)
	failed := 0
	for i, link := range links {
		if len(links) > 1 {
			d.Fprintf(out, "Config Number: %d\n", i+1)
		}
		rec, err := registry.Parse(link)
		if err != nil {
			customlog.Printf(customlog.Failure, "%v\n", err)
			failed++
			continue
		}
		fmt.Fprintln(out, rec.DetailsStr())
	}
	if failed == len(links) {
		return fmt.Errorf("none of the %d links could be parsed", len(links))
	}
	if failed > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d links could not be parsed\n", failed, len(links))
	}
	return nil
}
