package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/cpa005/internal/buildinfo"
	"github.com/cleared-dev/cpa005/internal/config"
	"github.com/cleared-dev/cpa005/internal/convert"
	"github.com/cleared-dev/cpa005/internal/model"
	"github.com/cleared-dev/cpa005/internal/runlog"
	"github.com/cleared-dev/cpa005/internal/source"
)

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	cfg       *config.Config
	history   runlog.Store
	sources   *source.Registry
	logger    *log.Logger
	now       func() time.Time
	maxUpload int64
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

// outputName swaps the upload's extension for ext.
func outputName(upload, ext string) string {
	base := filepath.Base(upload)
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "payments"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// --- Convert ---

// Convert accepts a multipart upload in the "file" field and returns the
// CPA-005 file as an attachment. The convtype query selects PAD or PDS.
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	mode, err := model.ParseMode(r.URL.Query().Get("convtype"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required: "+err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file: "+err.Error())
		return
	}

	opts, err := h.cfg.ConvertOptions(mode, h.logger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	now := h.now()
	opts.CreationDate = now

	name := outputName(header.Filename, h.cfg.Output.Extension)
	res, err := h.convert(header.Filename, data, opts)
	h.record(now, header.Filename, name, mode, res, err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("X-Record-Count", strconv.Itoa(res.Summary.Records))
	w.Header().Set("X-Total-Amount", res.Summary.Total.StringFixed(2))
	w.WriteHeader(http.StatusOK)
	if _, err := res.WriteTo(w); err != nil {
		h.logger.Printf("[server] writing response for %s: %v", header.Filename, err)
	}
}

func (h *Handlers) convert(name string, data []byte, opts convert.Options) (*convert.Result, error) {
	sheet, err := h.sources.Parse(name, data)
	if err != nil {
		return nil, err
	}
	return convert.Convert(sheet, opts)
}

func (h *Handlers) record(now time.Time, src, out string, mode model.Mode, res *convert.Result, err error) {
	if h.history == nil {
		return
	}
	var sum convert.Summary
	if res != nil {
		sum = res.Summary
	}
	entry := runlog.NewEntry(now, src, out, string(mode), sum, err)
	if err := h.history.Append(entry); err != nil {
		h.logger.Printf("[server] recording run %s: %v", entry.ID, err)
	}
}

// --- ListRuns ---

func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
	if h.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"runs": []runlog.Entry{}})
		return
	}
	runs, err := h.history.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []runlog.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}
