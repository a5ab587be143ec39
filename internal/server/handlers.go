package server

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/ventas-ledger/internal/aggregate"
	"github.com/ginjaninja78/ventas-ledger/internal/converter"
	"github.com/ginjaninja78/ventas-ledger/internal/exporter"
	"github.com/ginjaninja78/ventas-ledger/internal/pipeline"
	"github.com/ginjaninja78/ventas-ledger/internal/types"
	"github.com/ginjaninja78/ventas-ledger/internal/validation"
	"github.com/ginjaninja78/ventas-ledger/internal/xlsxreport"
	"github.com/ginjaninja78/ventas-ledger/internal/xmlwriter"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// utf8BOM is dropped from uploaded ledgers.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawPreview is the raw table shown before cleaning.
type RawPreview struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// LedgerResponse is the JSON body of the clean endpoints.
type LedgerResponse struct {
	RawCount      int                    `json:"raw_count"`
	CleanCount    int                    `json:"clean_count"`
	RejectedCount int                    `json:"rejected_count"`
	RawPreview    RawPreview             `json:"raw_preview"`
	CleanPreview  []types.CleanRecord    `json:"clean_preview"`
	Summary       aggregate.Summary      `json:"summary"`
	TopProductos  aggregate.Groups       `json:"top_productos"`
	Rejections    []validation.Rejection `json:"rejections,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// =============================================================================
// UPLOADED LEDGER
// =============================================================================

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	out, err := s.runBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondLedger(w, r, out)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	out, err := s.runBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondExport(w, r, out)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	out, err := s.runBody(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondReport(w, r, out)
}

// =============================================================================
// CONFIGURED SOURCE LEDGER
// =============================================================================

func (s *Server) handleSourceClean(w http.ResponseWriter, r *http.Request) {
	out, err := s.runSource(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondLedger(w, r, out)
}

func (s *Server) handleSourceExport(w http.ResponseWriter, r *http.Request) {
	out, err := s.runSource(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondExport(w, r, out)
}

func (s *Server) handleSourceReport(w http.ResponseWriter, r *http.Request) {
	out, err := s.runSource(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondReport(w, r, out)
}

// =============================================================================
// PIPELINE HELPERS
// =============================================================================

// runner builds a pipeline runner; ?top=N overrides processing.top_n.
func (s *Server) runner(r *http.Request) (*pipeline.Runner, error) {
	opts := pipeline.Options{
		PreviewRows: s.processing.PreviewRows,
		TopN:        s.processing.TopN,
	}

	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, NewAPIError(http.StatusBadRequest, CodeInvalidArgument,
				"top must be a positive integer")
		}
		opts.TopN = n
	}

	return pipeline.New(opts, s.logger), nil
}

// runBody runs the pipeline on the request body.
func (s *Server) runBody(w http.ResponseWriter, r *http.Request) (*pipeline.Output, error) {
	runner, err := s.runner(r)
	if err != nil {
		return nil, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return runner.Run(string(bytes.TrimPrefix(body, utf8BOM))), nil
}

// runSource runs the pipeline on the configured source ledger.
func (s *Server) runSource(r *http.Request) (*pipeline.Output, error) {
	runner, err := s.runner(r)
	if err != nil {
		return nil, err
	}

	raw, err := converter.LoadLedger(s.cfg.SourceFile)
	if err != nil {
		return nil, err
	}

	return runner.RunRecords(raw), nil
}

// =============================================================================
// RESPONSES
// =============================================================================

// respondLedger renders the dashboard data. ?rejections=true adds the
// list of dropped rows.
func (s *Server) respondLedger(w http.ResponseWriter, r *http.Request, out *pipeline.Output) {
	resp := LedgerResponse{
		RawCount:      out.RawCount,
		CleanCount:    out.CleanCount,
		RejectedCount: out.Report.Rejected(),
		RawPreview:    rawPreview(out.RawPreview),
		CleanPreview:  out.CleanPreview,
		Summary:       out.Summary,
		TopProductos:  out.TopProductos,
	}
	if wantsFlag(r, "rejections") {
		resp.Rejections = out.Report.Rejections
	}

	render.JSON(w, r, resp)
}

// respondExport delivers the clean ledger as a download.
func (s *Server) respondExport(w http.ResponseWriter, r *http.Request, out *pipeline.Output) {
	exported, err := out.Export()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	name := s.processing.ExportFileName
	if name == "" {
		name = exporter.FileName
	}

	s.writeAttachment(w, r, exporter.ContentType, name, []byte(exported))
}

// respondReport delivers the summary report; ?format=xlsx (default) or
// ?format=xml, and ?records=true adds the clean rows to the XML report.
func (s *Server) respondReport(w http.ResponseWriter, r *http.Request, out *pipeline.Output) {
	base := strings.TrimSuffix(s.processing.ExportFileName, filepath.Ext(s.processing.ExportFileName))
	if base == "" {
		base = strings.TrimSuffix(exporter.FileName, filepath.Ext(exporter.FileName))
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", converter.ReportXLSX:
		data, err := xlsxreport.Bytes(out)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.writeAttachment(w, r, xlsxreport.ContentType, base+xlsxreport.Extension, data)

	case converter.ReportXML:
		opts := xmlwriter.DefaultGenerateOptions()
		opts.IncludeRecords = wantsFlag(r, "records")
		data, err := xmlwriter.GenerateWithOptions(out, opts)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.writeAttachment(w, r, "application/xml; charset=utf-8", base+".xml", data)

	default:
		s.respondError(w, r, NewAPIError(http.StatusBadRequest, CodeInvalidFormat,
			fmt.Sprintf("unknown report format %q (want xlsx or xml)", format)))
	}
}

// writeAttachment sends data as a download. Headers are already written
// when Write fails, so the error is only logged.
func (s *Server) writeAttachment(w http.ResponseWriter, r *http.Request, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.DebugContext(r.Context(), "failed to write attachment",
			slog.String("path", r.URL.Path),
			slog.String("file", name),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}
}

func rawPreview(records []types.RawRecord) RawPreview {
	preview := RawPreview{Headers: []string{}, Rows: make([][]string, 0, len(records))}
	if len(records) > 0 {
		preview.Headers = records[0].Headers
	}
	for _, record := range records {
		preview.Rows = append(preview.Rows, record.Values())
	}
	return preview
}

func wantsFlag(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
