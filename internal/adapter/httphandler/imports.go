package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/webshop/backend/internal/core/port"
)

type ImportsHandler struct {
	importer port.ProductImporter
}

func RegisterImports(mux *http.ServeMux, importer port.ProductImporter) {
	h := ImportsHandler{importer}
	mux.HandleFunc("GET /api/erp-import/pending", h.GetPending)
	mux.HandleFunc("POST /api/erp-import/import/{file}", h.PostImport)
	mux.HandleFunc("POST /api/erp-import/import-all", h.PostImportAll)
}

func (h ImportsHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	const op = "ImportsHandler.GetPending"
	log := slog.With("op", op)

	files, err := h.importer.ListPending(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	views := make([]ImportFileView, len(files))
	for i, f := range files {
		views[i] = ImportFileView{Name: f.Name, Size: f.Size, Modified: f.Modified}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h ImportsHandler) PostImport(w http.ResponseWriter, r *http.Request) {
	const op = "ImportsHandler.PostImport"
	log := slog.With("op", op)

	result, err := h.importer.ImportFile(r.Context(), r.PathValue("file"))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, toImportResultView(result))
}

func (h ImportsHandler) PostImportAll(w http.ResponseWriter, r *http.Request) {
	const op = "ImportsHandler.PostImportAll"
	log := slog.With("op", op)

	results, err := h.importer.ImportAll(r.Context())
	if err != nil {
		writeError(w, log, err)
		return
	}

	views := make([]ImportResultView, len(results))
	for i, res := range results {
		views[i] = toImportResultView(res)
	}
	writeJSON(w, http.StatusOK, views)
}
