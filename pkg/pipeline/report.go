package pipeline

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

const (
	StatusConverted = "converted"
	StatusSkipped   = "skipped"
)

// LineResult is the outcome of one filtered input line.
type LineResult struct {
	Index    int    `csv:"index" json:"index"` // 1-based position among filtered lines
	Status   string `csv:"status" json:"status"`
	Protocol string `csv:"protocol" json:"protocol"`
	Address  string `csv:"address" json:"address"`
	Location string `csv:"location" json:"location"`
	Tag      string `csv:"tag" json:"tag"`
	Reason   string `csv:"reason" json:"reason"` // why the line was skipped
	Link     string `csv:"link" json:"link"`
}

func (r *LineResult) skip(format string, v ...interface{}) {
	r.Status = StatusSkipped
	r.Reason = fmt.Sprintf(format, v...)
}

// Report lists one LineResult per filtered line, in input order.
type Report []*LineResult

func (r Report) Converted() int {
	return r.count(StatusConverted)
}

func (r Report) Skipped() int {
	return r.count(StatusSkipped)
}

func (r Report) count(status string) int {
	n := 0
	for _, l := range r {
		if l.Status == status {
			n++
		}
	}
	return n
}

// WriteCSV writes the report with a header row.
func (r Report) WriteCSV(w io.Writer) error {
	if err := gocsv.Marshal(&r, w); err != nil {
		return fmt.Errorf("failed to marshal CSV: %w", err)
	}
	return nil
}
