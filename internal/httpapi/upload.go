package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/supplier-cli/internal/ingest"
)

type uploadResponse struct {
	AnalysisID string `json:"analysis_id"`
	Imported   int    `json:"imported"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.MaxFileSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload (max %d MB)", s.cfg.MaxFileSizeMB))
		return
	}

	analysisID := r.FormValue("analysis_id")
	if analysisID == "" {
		respondError(w, http.StatusBadRequest, "analysis_id is required")
		return
	}

	// Ownership check before touching the file.
	if _, err := s.store.GetAnalysis(r.Context(), ownerID(r), analysisID); err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	rows, err := ingest.ParseFile(data, ext)
	switch {
	case errors.Is(err, ingest.ErrEmptyFile):
		respondError(w, http.StatusBadRequest, "file contains no data rows")
		return
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file format %q (use csv, xlsx or xlsm)", ext))
		return
	case err != nil:
		zap.L().Error("httpapi: parse upload", zap.Error(err))
		respondError(w, http.StatusBadRequest, "could not parse uploaded file")
		return
	}

	// All-or-nothing: a single invalid row blocks the whole import.
	if validationErrors := ingest.Validate(rows); len(validationErrors) > 0 {
		display := validationErrors
		if len(display) > s.cfg.MaxDisplayErrors {
			display = display[:s.cfg.MaxDisplayErrors]
		}
		errs := make([]string, len(display))
		for i, ve := range display {
			errs[i] = ve.Error()
		}
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("%d validation errors, nothing imported", len(validationErrors)), errs...)
		return
	}

	suppliers, err := ingest.Clean(rows)
	if err != nil {
		// The validator accepted the batch, so a cleaning failure is a
		// defect in this code, not user input.
		var ce *ingest.CleaningError
		if errors.As(err, &ce) {
			zap.L().Error("httpapi: cleaning failed after validation passed",
				zap.String("supplier", ce.Supplier), zap.Error(err))
		} else {
			zap.L().Error("httpapi: cleaning failed", zap.Error(err))
		}
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	n, err := s.store.CreateSuppliers(r.Context(), analysisID, suppliers)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}

	zap.L().Info("httpapi: suppliers imported",
		zap.String("analysis_id", analysisID),
		zap.Int("imported", n),
	)
	respondMessage(w, http.StatusOK, "import complete", uploadResponse{AnalysisID: analysisID, Imported: n})
}

type templateResponse struct {
	Headers []string `json:"headers"`
	Example []string `json:"example"`
}

func (s *Server) handleTemplate(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, templateResponse{
		Headers: []string{
			ingest.FieldName, ingest.FieldProduct, ingest.FieldQuantity,
			ingest.FieldQuality, ingest.FieldDelay, ingest.FieldPrice,
			ingest.FieldDeliveryDate,
		},
		Example: []string{"Acme Corp", "Widget", "100", "8.5", "5", "150.50", "2024-01-15"},
	})
}
