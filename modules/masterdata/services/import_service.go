package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	gerrors "github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
	"github.com/vertice-lat/maestro/pkg/composables"
	"github.com/vertice-lat/maestro/pkg/eventbus"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// inTxFn is swapped in tests.
var inTxFn = composables.InTx

// Mode selects what happens to rows already in the catalog.
type Mode string

const (
	ModeAppend  Mode = "append"
	ModeReplace Mode = "replace"
)

// ParseMode defaults the empty string to append and rejects anything else.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeAppend:
		return ModeAppend, nil
	case ModeReplace:
		return ModeReplace, nil
	default:
		return "", &schema.ValidationError{Field: "mode", Message: "must be append or replace"}
	}
}

// RowError is one rejected spreadsheet row. Row 0 carries batch-level
// warnings, such as the duplicate count.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Mode     Mode       `json:"mode"`
	Errors   []RowError `json:"errors"`
}

// ImportService loads a whole workbook, validates every data row
// independently and commits the survivors in one transaction. One bad row
// never aborts the batch; an empty or headerless workbook does.
type ImportService struct {
	registry  *schema.Registry
	repo      schema.Repository
	hooks     *HookRegistry
	publisher eventbus.EventBus
}

func NewImportService(
	registry *schema.Registry,
	repo schema.Repository,
	hooks *HookRegistry,
	publisher eventbus.EventBus,
) *ImportService {
	return &ImportService{
		registry:  registry,
		repo:      repo,
		hooks:     hooks,
		publisher: publisher,
	}
}

func (s *ImportService) Import(ctx context.Context, key, filename string, file io.Reader, mode Mode) (*ImportResult, error) {
	def, err := s.registry.Get(key)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, gerrors.Wrap(err, "read upload")
	}
	if err := checkUpload(filename, data); err != nil {
		return nil, err
	}

	rows, err := decodeWorkbook(data)
	if err != nil {
		return nil, err
	}

	records, rowErrors, err := s.ingest(ctx, def, rows)
	if err != nil {
		return nil, err
	}

	deduped, duplicates := schema.Dedupe(records, def.UniqueKey)
	if duplicates > 0 {
		rowErrors = append(rowErrors, RowError{
			Row:     0,
			Message: fmt.Sprintf("%d duplicate rows were replaced by later occurrences", duplicates),
		})
	}

	result := &ImportResult{Mode: mode, Errors: rowErrors}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	// A file that parsed to zero usable rows never truncates the table,
	// replace mode included.
	if len(deduped) == 0 {
		return result, nil
	}

	err = inTxFn(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockForImport(txCtx, def); err != nil {
			return err
		}
		if mode == ModeReplace {
			if err := s.repo.DeleteAll(txCtx, def); err != nil {
				return err
			}
		}
		imported, err := s.repo.UpsertBatch(txCtx, def, deduped)
		if err != nil {
			return err
		}
		result.Imported = imported
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ImportCompletedEvent{
		Catalog:   def.Key,
		Mode:      mode,
		Imported:  result.Imported,
		RowErrors: len(result.Errors),
	})
	return result, nil
}

// ingest maps the header row to fields and validates every data row in file
// order. Returned errors carry 1-based spreadsheet row numbers; the header is
// row 1.
func (s *ImportService) ingest(ctx context.Context, def *schema.Definition, rows [][]string) ([]schema.Record, []RowError, error) {
	if len(rows) == 0 || rowBlank(rows[0]) {
		return nil, nil, &schema.ValidationError{Message: "header row is empty"}
	}

	slots, missing := def.MatchHeaders(rows[0])
	if len(missing) > 0 {
		return nil, nil, &schema.ValidationError{
			Message: "missing required columns: " + strings.Join(missing, ", "),
		}
	}

	hook := s.hooks.For(def.Key)
	var records []schema.Record
	var rowErrors []RowError
	for i, row := range rows[1:] {
		rowNum := i + 2

		payload := make(map[string]any, len(slots))
		for col, f := range slots {
			if col >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[col])
			if value == "" {
				continue
			}
			payload[f.Name] = value
		}
		if len(payload) == 0 {
			continue
		}

		record, err := schema.Validate(def, payload, false)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if hook != nil {
			if err := hook(ctx, def, record); err != nil {
				rowErrors = append(rowErrors, RowError{Row: rowNum, Message: err.Error()})
				continue
			}
		}
		records = append(records, record)
	}
	return records, rowErrors, nil
}

// checkUpload sniffs the payload before excelize touches it; extension alone
// is not trusted.
func checkUpload(filename string, data []byte) error {
	if filename != "" && !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return &schema.ValidationError{Field: "file", Message: "only .xlsx files are accepted"}
	}
	if !mimetype.Detect(data).Is(xlsxMIME) {
		return &schema.ValidationError{Field: "file", Message: "file is not a valid xlsx workbook"}
	}
	return nil
}

// decodeWorkbook returns the first sheet as formatted cell values: formula
// cells come back as their cached results and rich text as its plain string.
func decodeWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &schema.ValidationError{Field: "file", Message: "file is not a valid xlsx workbook"}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &schema.ValidationError{Field: "file", Message: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, gerrors.Wrap(err, "read sheet")
	}
	return rows, nil
}

func rowBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
