package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vertice-lat/maestro/modules/masterdata/domain/schema"
)

func passthroughTx(t *testing.T) {
	t.Helper()
	prev := inTxFn
	t.Cleanup(func() { inTxFn = prev })
	inTxFn = func(ctx context.Context, fn func(context.Context) error) error {
		return fn(ctx)
	}
}

func workbook(t *testing.T, rows [][]any) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetList()[0]
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func newImportService(repo schema.Repository) *ImportService {
	return NewImportService(taxRatesRegistry(), repo, NewHookRegistry(), &stubPublisher{})
}

func TestImportService_RowIsolationAndDedupe(t *testing.T) {
	passthroughTx(t)
	repo := newMockRepo()
	svc := newImportService(repo)

	file := workbook(t, [][]any{
		{"Código", "Descripción", "Tarifa", "Notas"},
		{"01", "Exento", "0", "ignored column"},
		{"04", "Tarifa reducida", "cuatro"},
		{"08", "Tarifa general", "13,00"},
		{"", "", ""},
		{"08", "Tarifa general (corregida)", "13.00"},
	})

	result, err := svc.Import(context.Background(), "tax-rates", "tarifas.xlsx", file, ModeAppend)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, ModeAppend, result.Mode)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "rate")
	assert.Equal(t, 0, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "1 duplicate")

	def := taxRatesRegistry().All()[0]
	stored := repo.all(def)
	require.Len(t, stored, 2)
	assert.Equal(t, "Tarifa general (corregida)", stored[1]["description"], "last occurrence wins")
	assert.Equal(t, []string{"md_tax_rates"}, repo.lockedTables)
	assert.Empty(t, repo.deletedTables)
}

func TestImportService_ReplaceTruncatesFirst(t *testing.T) {
	passthroughTx(t)
	repo := newMockRepo()
	svc := newImportService(repo)

	seed := workbook(t, [][]any{
		{"código", "descripción", "tarifa"},
		{"01", "Exento", "0"},
	})
	_, err := svc.Import(context.Background(), "tax-rates", "seed.xlsx", seed, ModeAppend)
	require.NoError(t, err)

	replacement := workbook(t, [][]any{
		{"código", "descripción", "tarifa"},
		{"08", "Tarifa general", "13"},
	})
	result, err := svc.Import(context.Background(), "tax-rates", "nuevas.xlsx", replacement, ModeReplace)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, []string{"md_tax_rates"}, repo.deletedTables)

	def := taxRatesRegistry().All()[0]
	stored := repo.all(def)
	require.Len(t, stored, 1)
	assert.Equal(t, "08", stored[0]["code"])
}

func TestImportService_ReplaceWithZeroValidRowsNeverTruncates(t *testing.T) {
	passthroughTx(t)
	repo := newMockRepo()
	svc := newImportService(repo)

	seed := workbook(t, [][]any{
		{"código", "descripción", "tarifa"},
		{"01", "Exento", "0"},
	})
	_, err := svc.Import(context.Background(), "tax-rates", "seed.xlsx", seed, ModeAppend)
	require.NoError(t, err)
	repo.deletedTables = nil

	broken := workbook(t, [][]any{
		{"código", "descripción", "tarifa"},
		{"08", "Tarifa general", "trece"},
	})
	result, err := svc.Import(context.Background(), "tax-rates", "rotas.xlsx", broken, ModeReplace)
	require.NoError(t, err)

	assert.Zero(t, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Empty(t, repo.deletedTables, "a file with no usable rows must not empty the table")

	def := taxRatesRegistry().All()[0]
	assert.Len(t, repo.all(def), 1)
}

func TestImportService_MissingRequiredColumnFailsFast(t *testing.T) {
	passthroughTx(t)
	svc := newImportService(newMockRepo())

	file := workbook(t, [][]any{
		{"código", "descripción"},
		{"08", "Tarifa general"},
	})
	_, err := svc.Import(context.Background(), "tax-rates", "tarifas.xlsx", file, ModeAppend)
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "rate")
}

func TestImportService_EmptyHeaderFailsFast(t *testing.T) {
	passthroughTx(t)
	svc := newImportService(newMockRepo())

	file := workbook(t, [][]any{{" ", " ", " "}})
	_, err := svc.Import(context.Background(), "tax-rates", "vacio.xlsx", file, ModeAppend)
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "header")
}

func TestImportService_RejectsNonWorkbookUploads(t *testing.T) {
	svc := newImportService(newMockRepo())

	var vErr *schema.ValidationError
	_, err := svc.Import(context.Background(), "tax-rates", "datos.csv", strings.NewReader("a,b\n"), ModeAppend)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "file", vErr.Field)

	// Correct extension, wrong content.
	_, err = svc.Import(context.Background(), "tax-rates", "datos.xlsx", strings.NewReader("not a zip"), ModeAppend)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "file", vErr.Field)
}

func TestImportService_RowHookFailureIsRowError(t *testing.T) {
	passthroughTx(t)
	repo := newMockRepo()
	hooks := NewHookRegistry()
	hooks.Register("tax-rates", func(_ context.Context, _ *schema.Definition, record schema.Record) error {
		if record["code"] == "99" {
			return schema.ErrNotFound
		}
		return nil
	})
	svc := NewImportService(taxRatesRegistry(), repo, hooks, &stubPublisher{})

	file := workbook(t, [][]any{
		{"código", "descripción", "tarifa"},
		{"08", "Tarifa general", "13"},
		{"99", "Huérfana", "1"},
	})
	result, err := svc.Import(context.Background(), "tax-rates", "tarifas.xlsx", file, ModeAppend)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, mode)

	mode, err = ParseMode(" Replace ")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, mode)

	_, err = ParseMode("merge")
	var vErr *schema.ValidationError
	require.ErrorAs(t, err, &vErr)
}
