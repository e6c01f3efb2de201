package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/webshop/backend/internal/core/domain"
	"github.com/webshop/backend/internal/core/port"
)

var _ port.ProductImporter = (*ImportService)(nil)

// PartialPolicy decides whether an import file with row errors still
// counts as a success.
type PartialPolicy int

const (
	// AcceptPartial treats a file as successful when no row failed,
	// or when at least one row was applied.
	AcceptPartial PartialPolicy = iota
	// RequireClean treats any row error as a file failure.
	RequireClean
)

const (
	processedDirName = "processed"
	errorDirName     = "errors"
)

var headerSpaces = regexp.MustCompile(`\s+`)

// ImportService ingests product CSV drops from the ERP. Files land in
// the import directory, get applied row by row keyed by the ERP
// product id, and are moved to processed/ or errors/ with a JSON log
// next to them.
type ImportService struct {
	dir      string
	policy   PartialPolicy
	products port.ProductRepository
}

func NewImportService(dir string, policy PartialPolicy, products port.ProductRepository) ImportService {
	return ImportService{dir: dir, policy: policy, products: products}
}

func (s ImportService) ensureDirs() error {
	for _, d := range []string{
		s.dir,
		filepath.Join(s.dir, processedDirName),
		filepath.Join(s.dir, errorDirName),
	} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func (s ImportService) ListPending(ctx context.Context) ([]port.ImportFileInfo, error) {
	const op = "ImportService.ListPending"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.ensureDirs(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	files := make([]port.ImportFileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		files = append(files, port.ImportFileInfo{
			Name:     e.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Unix(),
		})
	}
	return files, nil
}

func (s ImportService) ImportFile(ctx context.Context, filename string) (port.ImportResult, error) {
	const op = "ImportService.ImportFile"
	log := slog.With("op", op, "filename", filename)

	result := port.ImportResult{Filename: filename}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%s: %w", op, err)
	}

	// Reject traversal; filenames come from the admin API.
	if filepath.Base(filename) != filename || filename == "." {
		return result, fmt.Errorf(
			"%s: %w: invalid filename %q", op, domain.ErrInvalidArgument, filename)
	}

	if err := s.ensureDirs(); err != nil {
		return result, fmt.Errorf("%s: %w", op, err)
	}

	path := filepath.Join(s.dir, filename)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return result, fmt.Errorf(
				"%s: %w: file %q", op, domain.ErrNotFound, filename)
		}
		return result, fmt.Errorf("%s: %w", op, err)
	}

	result = s.applyFile(ctx, path, result)

	switch s.policy {
	case RequireClean:
		result.Success = len(result.Errors) == 0
	default:
		result.Success = len(result.Errors) == 0 || result.Imported+result.Updated > 0
	}

	if err := s.archive(path, filename, result); err != nil {
		log.Warn("could not archive import file", "err", err)
		result.Errors = append(result.Errors,
			fmt.Sprintf("could not move file: %v", err))
	}

	log.Info("import finished",
		"success", result.Success,
		"imported", result.Imported,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (s ImportService) applyFile(
	ctx context.Context, path string, result port.ImportResult,
) port.ImportResult {
	f, err := os.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("open: %v", err))
		return result
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("read header: %v", err))
		return result
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	if _, ok := cols["product_id"]; !ok {
		result.Errors = append(result.Errors, "missing product_id column")
		return result
	}

	rowNum := 1
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		rowNum++

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		id, price, rowErrs := validateRow(field)
		if len(rowErrs) != 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: %s", rowNum, strings.Join(rowErrs, ", ")))
			continue
		}

		created, err := s.products.UpsertImported(ctx, domain.Product{
			ID:          id,
			Name:        field("name"),
			Description: field("description"),
			Price:       price,
		})
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("row %d: database error: %v", rowNum, err))
			continue
		}
		if created {
			result.Imported++
		} else {
			result.Updated++
		}
	}

	if result.Imported+result.Updated == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "no data found in file")
	}
	return result
}

func validateRow(field func(string) string) (id int64, price float64, errs []string) {
	rawID := field("product_id")
	if rawID == "" {
		errs = append(errs, "missing product_id")
	} else {
		var err error
		id, err = strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			errs = append(errs, "invalid product_id")
		}
	}

	if field("name") == "" {
		errs = append(errs, "missing or empty product name")
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil || price <= 0 {
		errs = append(errs, "invalid price: must be a positive number")
	}
	return id, price, errs
}

// archive moves the file to processed/ or errors/ with a timestamp
// prefix and writes the result as JSON next to it.
func (s ImportService) archive(path, filename string, result port.ImportResult) error {
	sub := processedDirName
	if !result.Success {
		sub = errorDirName
	}
	stamped := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), filename)
	dest := filepath.Join(s.dir, sub, stamped)

	if err := os.Rename(path, dest); err != nil {
		return err
	}

	logBody, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(dest+".log", logBody, 0o644)
}

func (s ImportService) ImportAll(ctx context.Context) ([]port.ImportResult, error) {
	const op = "ImportService.ImportAll"

	pending, err := s.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	results := make([]port.ImportResult, 0, len(pending))
	for _, f := range pending {
		result, err := s.ImportFile(ctx, f.Name)
		if err != nil {
			return results, fmt.Errorf("%s: %w", op, err)
		}
		results = append(results, result)
	}
	return results, nil
}

func normalizeHeader(h string) string {
	return headerSpaces.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
}
