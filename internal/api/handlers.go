package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/hscode-reconciler/internal/analyzer"
	"github.com/ginjaninja78/hscode-reconciler/internal/config"
	"github.com/ginjaninja78/hscode-reconciler/internal/exporter"
	"github.com/ginjaninja78/hscode-reconciler/internal/grid"
	"github.com/ginjaninja78/hscode-reconciler/internal/validation"
	"github.com/ginjaninja78/hscode-reconciler/internal/xlsxparser"
	"github.com/ginjaninja78/hscode-reconciler/pkg/utils"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
)

// reconcileForm holds the non-file fields of a reconcile request.
// Column fields are comma-separated references ("P,O"); empty fields use the
// configured mapping.
type reconcileForm struct {
	Format string `form:"format" binding:"omitempty,oneof=json xlsx csv"`
	View   string `form:"view" binding:"omitempty,oneof=summary details"`
	Strict bool   `form:"strict"`

	HSCode      string `form:"hsCode"`
	Amount      string `form:"amount"`
	Cartons     string `form:"cartons"`
	NetWeight   string `form:"netWeight"`
	GrossWeight string `form:"grossWeight"`
}

// mapping overlays the form's column fields on base.
func (f reconcileForm) mapping(base config.ColumnMapping) config.ColumnMapping {
	m := base
	overlay(&m.Invoice.HSCode, f.HSCode)
	overlay(&m.Invoice.Amount, f.Amount)
	overlay(&m.PackingList.Cartons, f.Cartons)
	overlay(&m.PackingList.NetWeight, f.NetWeight)
	overlay(&m.PackingList.GrossWeight, f.GrossWeight)
	return m
}

func overlay(dst *[]string, field string) {
	var refs []string
	for _, part := range strings.Split(field, ",") {
		if ref := strings.TrimSpace(part); ref != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) > 0 {
		*dst = refs
	}
}

type formatForm struct {
	Format string `form:"format" binding:"omitempty,oneof=json xlsx csv"`
}

type previewForm struct {
	Kind string `form:"kind" binding:"omitempty,oneof=invoice packing_list"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleReconcile(c *gin.Context) {
	var form reconcileForm
	if err := bindForm(c, &form); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request parameters", err.Error())
		return
	}

	invoice, ok := s.readUpload(c, "invoice", "Invoice")
	if !ok {
		return
	}
	packing, ok := s.readUpload(c, "packingList", "Packing list")
	if !ok {
		return
	}

	mapping := form.mapping(s.analyzer.Config().Mapping)
	analysis, err := s.analyzer.Analyze(c.Request.Context(), invoice, packing, mapping, form.Strict)
	if err != nil {
		respondAnalysisError(c, err)
		return
	}

	switch form.Format {
	case "xlsx":
		s.sendFile(c, analyzer.KindAnalysis, "xlsx", contentTypeXLSX, func(w io.Writer) error {
			return exporter.WriteWorkbook(w, analysis.Result(), analysis.Descriptions)
		})
	case "csv":
		if form.View == "details" {
			s.sendFile(c, analyzer.KindDetails, "csv", contentTypeCSV, func(w io.Writer) error {
				return exporter.WriteDetailCSV(w, analysis.Details)
			})
			return
		}
		s.sendFile(c, analyzer.KindSummary, "csv", contentTypeCSV, func(w io.Writer) error {
			return exporter.WriteSummaryCSV(w, analysis.Summary)
		})
	default:
		c.JSON(http.StatusOK, analysis)
	}
}

func (s *Server) handleDescriptions(c *gin.Context) {
	var form formatForm
	if err := bindForm(c, &form); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request parameters", err.Error())
		return
	}

	invoice, ok := s.readUpload(c, "invoice", "Invoice")
	if !ok {
		return
	}

	entries, err := s.analyzer.DescribeGrid(invoice)
	if err != nil {
		respondAnalysisError(c, err)
		return
	}

	switch form.Format {
	case "xlsx":
		s.sendFile(c, analyzer.KindDescriptions, "xlsx", contentTypeXLSX, func(w io.Writer) error {
			return exporter.WriteDescriptionWorkbook(w, entries)
		})
	case "csv":
		s.sendFile(c, analyzer.KindDescriptions, "csv", contentTypeCSV, func(w io.Writer) error {
			return exporter.WriteDescriptionCSV(w, entries)
		})
	default:
		c.JSON(http.StatusOK, gin.H{"descriptions": entries, "count": len(entries)})
	}
}

// previewResponse is the body of a preview request.
type previewResponse struct {
	grid.Preview
	Validation *validation.Report `json:"validation,omitempty"`
}

func (s *Server) handlePreview(c *gin.Context) {
	var form previewForm
	if err := bindForm(c, &form); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request parameters", err.Error())
		return
	}

	g, ok := s.readUpload(c, "file", "File")
	if !ok {
		return
	}

	resp := previewResponse{Preview: grid.BuildPreview(g, grid.DefaultPreviewOptions())}
	if form.Kind != "" {
		resp.Validation = validation.ValidateGrid(g, validation.Kind(form.Kind), s.analyzer.Config().Mapping)
	}
	c.JSON(http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

// bindForm binds query parameters, then multipart form fields. Form fields
// win when both are present.
func bindForm(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return err
	}
	return c.ShouldBind(obj)
}

// readUpload decodes the uploaded file in field. On failure it writes the
// error response and returns false.
func (s *Server) readUpload(c *gin.Context, field, label string) (grid.Grid, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("%s file (%s) is missing or invalid", label, field))
		return nil, false
	}

	if err := validation.ValidateExtension(header.Filename); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("%s file is not a supported workbook", label), err.Error())
		return nil, false
	}

	g, err := decodeUpload(header, s.analyzer.ReadOptions())
	if err != nil {
		s.logger.Warn().Err(err).Str("field", field).Str("filename", header.Filename).Msg("Failed to decode upload")
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Failed to parse %s file", strings.ToLower(label)), err.Error())
		return nil, false
	}
	return g, true
}

func decodeUpload(header *multipart.FileHeader, opts xlsxparser.Options) (grid.Grid, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return xlsxparser.Read(file, header.Filename, opts)
}

// sendFile renders an attachment in memory so that a rendering error can
// still produce a JSON error response.
func (s *Server) sendFile(c *gin.Context, kind, ext, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to render output", err.Error())
		return
	}

	name := utils.GenerateOutputFileName(s.analyzer.Config().OutputNameFormat, ext, map[string]string{"kind": kind})
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
