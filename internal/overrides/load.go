package overrides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/formbatch/internal/common"
	"github.com/joseph-ayodele/formbatch/internal/entity"
)

// Column headers expected in the override workbooks.
const (
	ColFirstName = "FIRST NAME"
	ColLastName  = "LAST NAME"
	ColZipCode   = "ZIP CODE"
)

// headerScanRows limits how far down the sheet the header row may sit.
const headerScanRows = 10

// ErrMissingColumn is returned when a present workbook lacks a required header.
var ErrMissingColumn = errors.New("missing column")

// Load reads the ignore and order workbooks. Either path may be empty or point
// to a file that does not exist; that list is then empty.
func Load(ctx context.Context, ignorePath, orderPath string, logger *slog.Logger) (*Registry, error) {
	logger = common.LoggerFromContext(ctx, logger)

	ignore, err := loadList(ignorePath, false)
	if err != nil {
		return nil, common.NewAppError(common.CodeOverrides, "load ignore list", err)
	}
	if ignore != nil {
		logger.Info("loaded ignore entries", "path", ignorePath, "count", len(ignore))
	} else {
		logger.Info("no ignore list", "path", ignorePath)
	}

	order, err := loadList(orderPath, true)
	if err != nil {
		return nil, common.NewAppError(common.CodeOverrides, "load order list", err)
	}
	if order != nil {
		logger.Info("loaded order entries", "path", orderPath, "count", len(order))
	} else {
		logger.Info("no order list", "path", orderPath)
	}

	return NewRegistry(ignore, order), nil
}

// loadList returns nil (not an error) when the workbook is absent.
func loadList(path string, withZip bool) ([]entity.IdentityKey, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	rows, err := readFirstSheet(path)
	if err != nil {
		return nil, err
	}
	return parseRows(rows, withZip)
}

func readFirstSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets: %w", path, common.ErrInvalidInput)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// parseRows locates the header row and converts each data row to a key.
// Rows with neither a first nor a last name are skipped.
func parseRows(rows [][]string, withZip bool) ([]entity.IdentityKey, error) {
	required := []string{ColFirstName, ColLastName}
	if withZip {
		required = append(required, ColZipCode)
	}

	headerAt, cols := -1, map[string]int{}
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		found := indexHeader(rows[i])
		if hasAll(found, required) {
			headerAt, cols = i, found
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%w: need %s", ErrMissingColumn, strings.Join(required, ", "))
	}

	keys := make([]entity.IdentityKey, 0, len(rows)-headerAt-1)
	for _, row := range rows[headerAt+1:] {
		first := cell(row, cols[ColFirstName])
		last := cell(row, cols[ColLastName])
		if strings.TrimSpace(first) == "" && strings.TrimSpace(last) == "" {
			continue
		}
		zip := ""
		if withZip {
			zip = normalizeZipCell(cell(row, cols[ColZipCode]))
		}
		keys = append(keys, entity.NewIdentityKey(first, last, zip))
	}
	return keys, nil
}

func indexHeader(row []string) map[string]int {
	out := make(map[string]int, len(row))
	for i, v := range row {
		name := strings.ToUpper(strings.Join(strings.Fields(v), " "))
		if _, dup := out[name]; !dup && name != "" {
			out[name] = i
		}
	}
	return out
}

func hasAll(found map[string]int, required []string) bool {
	for _, r := range required {
		if _, ok := found[r]; !ok {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// normalizeZipCell undoes spreadsheet damage to postal codes: numeric cells
// render as "2134" or "90210.0" after losing their leading zeros.
func normalizeZipCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimSuffix(v, ".0")
	if v == "" {
		return ""
	}
	if len(v) < 5 && isDigits(v) {
		v = strings.Repeat("0", 5-len(v)) + v
	}
	if len(v) > 5 && len(v) < 9 && isDigits(v) {
		// ZIP+4 stored as a number: 9 digits minus lost leading zeros.
		v = strings.Repeat("0", 9-len(v)) + v
	}
	return entity.NormalizeZip(v)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
