// Package pipeline runs the in-memory ledger pipeline:
// parse -> clean -> aggregate.
//
// A run is synchronous and pure apart from logging. It never fails: bad
// rows are dropped by the clean pass and show up only as a lower clean
// count and in the validation report.
package pipeline

import (
	"log/slog"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/csvparser"
	"github.com/ginjaninja78/ventas-ledger/internal/exporter"
	"github.com/ginjaninja78/ventas-ledger/internal/logging"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/ginjaninja78/ventas-ledger/internal/validation"
)

// Options tunes the presentation outputs of a run.
type Options struct {
	// PreviewRows is the number of leading raw and clean rows kept.
	PreviewRows int

	// TopN is the length of the top products list.
	TopN int
}

// DefaultOptions mirrors the dashboard: 10 preview rows, top 5 products.
func DefaultOptions() Options {
	return Options{PreviewRows: 10, TopN: aggregate.DefaultTopN}
}

// Output is everything a presentation collaborator needs from a run.
type Output struct {
	RawCount     int                 `json:"raw_count"`
	CleanCount   int                 `json:"clean_count"`
	RawPreview   []types.RawRecord   `json:"-"`
	CleanPreview []types.CleanRecord `json:"clean_preview"`
	Summary      aggregate.Summary   `json:"summary"`
	TopProductos aggregate.Groups    `json:"top_productos"`

	// Clean holds every surviving record, for export.
	Clean []types.CleanRecord `json:"-"`

	// Report explains the rejected rows.
	Report *validation.Report `json:"-"`
}

// Export serializes the clean records. It fails with
// exporter.ErrNoRecords when nothing survived cleaning.
func (o *Output) Export() (string, error) {
	return exporter.Export(o.Clean)
}

// Runner executes the pipeline with fixed options.
type Runner struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Runner. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Runner {
	if opts.TopN <= 0 {
		opts.TopN = aggregate.DefaultTopN
	}
	if opts.PreviewRows < 0 {
		opts.PreviewRows = 0
	}
	return &Runner{opts: opts, logger: logging.OrDefault(logger)}
}

// Run processes raw ledger text.
func (r *Runner) Run(text string) *Output {
	return r.RunRecords(csvparser.Parse(text))
}

// RunRecords processes already-parsed records.
func (r *Runner) RunRecords(raw []types.RawRecord) *Output {
	clean, report := validation.CleanWithReport(raw)
	summary := aggregate.Aggregate(clean)

	for _, rej := range report.Rejections {
		r.logger.Debug("row rejected",
			slog.Int("line", rej.Line),
			slog.String("rule", string(rej.Rule)),
			slog.String("field", rej.Field),
			slog.String("value", rej.Value))
	}
	r.logger.Info("ledger cleaned",
		slog.Int("raw_rows", report.Total),
		slog.Int("clean_rows", report.Accepted),
		slog.Int("rejected_rows", report.Rejected()))

	return &Output{
		RawCount:     len(raw),
		CleanCount:   len(clean),
		RawPreview:   csvparser.Preview(raw, r.opts.PreviewRows),
		CleanPreview: csvparser.Preview(clean, r.opts.PreviewRows),
		Summary:      summary,
		TopProductos: summary.TopProductos(r.opts.TopN),
		Clean:        clean,
		Report:       report,
	}
}
