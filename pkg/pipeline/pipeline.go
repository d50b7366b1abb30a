package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/proxyfig/proxyfig/pkg/core/protocol"
	"github.com/proxyfig/proxyfig/pkg/core/singbox"
	"github.com/proxyfig/proxyfig/pkg/location"
	"github.com/proxyfig/proxyfig/utils"
	"github.com/proxyfig/proxyfig/utils/customlog"

	"github.com/alitto/pond/v2"
)

var ErrNoValidConfigs = errors.New("no valid configs were converted to sing-box format")

// CommentPrefix marks input lines that are ignored.
const CommentPrefix = "//"

const DefaultWorkers = 8

// Locator labels a server address with its location. It must not fail.
type Locator interface {
	Resolve(ctx context.Context, address string) string
}

type Options struct {
	Registry *protocol.Registry // defaults to protocol.NewRegistry()
	Locator  Locator            // defaults to labelling everything location.Unknown
	Workers  int                // concurrent location lookups; 1 resolves one line at a time
	Verbose  bool
}

// Pipeline converts share links into a plain and an augmented document.
type Pipeline struct {
	registry *protocol.Registry
	locator  Locator
	workers  int
	verbose  bool
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		registry: opts.Registry,
		locator:  opts.Locator,
		workers:  opts.Workers,
		verbose:  opts.Verbose,
	}
	if p.registry == nil {
		p.registry = protocol.NewRegistry()
	}
	if p.locator == nil {
		p.locator = location.Static(location.Unknown)
	}
	if p.workers <= 0 {
		p.workers = DefaultWorkers
	}
	return p
}

// Result of a successful run.
type Result struct {
	Plain     *singbox.RoutingConfig
	Augmented *singbox.RoutingConfig
	Report    Report
}

// FilterLines drops blank lines and comments, then trims what is left. Only
// a line starting with CommentPrefix in its first column is a comment; an
// indented one is kept and later fails to parse like any other bad line.
func FilterLines(lines []string) []string {
	var out []string
	for _, raw := range lines {
		if strings.HasPrefix(raw, CommentPrefix) {
			continue
		}
		l := strings.TrimSpace(raw)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// Run converts lines. Malformed lines are skipped and recorded in the
// report; when nothing converts, ErrNoValidConfigs is returned together with
// the report and no documents.
func (p *Pipeline) Run(ctx context.Context, lines []string) (*Result, error) {
	filtered := FilterLines(lines)
	report := make(Report, len(filtered))
	records := make([]*protocol.Record, len(filtered))

	// A line that fails to parse still consumes its index.
	for i, line := range filtered {
		report[i] = &LineResult{Index: i + 1, Link: line}

		rec, err := p.registry.Parse(line)
		if err != nil {
			report[i].skip("%v", err)
			if p.verbose {
				customlog.Printf(customlog.Failure, "Line %d skipped: %v\n", i+1, err)
			}
			continue
		}

		if !utils.IsKnownFingerprint(rec.Fingerprint) {
			customlog.Printf(customlog.Warning, "Line %d: unknown fingerprint %q is passed through as is\n", i+1, rec.Fingerprint)
		}
		report[i].Protocol = rec.Protocol
		report[i].Address = rec.Address
		records[i] = rec
	}

	labels := p.resolveAll(ctx, records)

	var outbounds []singbox.Outbound
	for i, rec := range records {
		if rec == nil {
			continue
		}
		report[i].Location = labels[i]

		o := singbox.BuildOutbound(rec, labels[i], i+1)
		if o == nil {
			report[i].skip("no outbound mapping for %s", rec.Protocol)
			continue
		}
		outbounds = append(outbounds, *o)
		report[i].Status = StatusConverted
		report[i].Tag = o.Tag
	}

	if len(outbounds) == 0 {
		return &Result{Report: report}, ErrNoValidConfigs
	}

	return &Result{
		Plain:     singbox.Assemble(outbounds, false),
		Augmented: singbox.Assemble(outbounds, true),
		Report:    report,
	}, nil
}

// resolveAll labels every parsed record. Lookups run on a bounded pool; the
// results are indexed like records so completion order does not matter.
func (p *Pipeline) resolveAll(ctx context.Context, records []*protocol.Record) []string {
	labels := make([]string, len(records))

	pool := pond.NewPool(p.workers)
	for i, rec := range records {
		if rec == nil {
			continue
		}
		pool.Submit(func() {
			labels[i] = p.locator.Resolve(ctx, rec.Address)
		})
	}
	pool.StopAndWait()

	return labels
}
