package main

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/service"
)

const reportA = `Lince - Perdas por Departamento
Período: 01/03/2024 a 31/03/2024
Código Descrição Un Preço Qtde Valor
0007 PADARIA -
000101 PAO FRANCES KG 5,00 - 2,000 10,00
001685 SANDUICHE A METRO KG KG 65,90 - 0,66 43,49
Total Setor 53,49
Página 1`

const reportB = `Lince - Perdas por Departamento
0007 PADARIA -
000101 PAO FRANCES KG 5,00 - 3,500 17,50
Página 1`

func writeReport(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LINCE_SECTOR", "LINCE_MONTH", "LINCE_WEEK", "INFER_METADATA",
		"WORKERS", "KEY_POLICY", "SIMILARITY_DISTANCE",
		"OUTPUT_DIR", "OUTPUT_FORMAT", "OUTPUT_SHEET", "OUTPUT_FILE",
		"LOG_LEVEL", "LOG_FORMAT", "METRICS_ENABLED", "METRICS_FILE",
	} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writtenPath returns the sheet path a convert run reported.
func writtenPath(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if path, ok := strings.CutPrefix(line, "written to "); ok {
			return path
		}
	}
	t.Fatalf("no output path in %q", out)
	return ""
}

// batchID returns the batch id a convert run reported.
func batchID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "batch "); ok {
			return id
		}
	}
	t.Fatalf("no batch id in %q", out)
	return ""
}

func sheets(t *testing.T, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	require.NoError(t, err)
	return matches
}

func TestConvert_XLSX(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "saida")
	a := writeReport(t, dir, "a.txt", reportA)
	b := writeReport(t, dir, "b.txt", reportB)

	out, err := execute(t, "convert", "--sector", "PADARIA", "--month", "03/2024", "--week", "12", "--out", outDir, a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "2 product(s) from 2 file(s)")

	path := writtenPath(t, out)
	assert.Equal(t, outDir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_perdas_lince.xlsx"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Perdas", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "SANDUICHE A METRO", rows[1][0])
	assert.Equal(t, "PAO FRANCES", rows[2][0])
	assert.Equal(t, "PADARIA", rows[2][1])
	assert.Equal(t, "12", rows[2][3])
}

func TestConvert_CSVWithInferredMetadata(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)
	b := writeReport(t, dir, "b.txt", reportB)

	t.Setenv("OUTPUT_FORMAT", "csv")
	t.Setenv("METRICS_ENABLED", "true")

	out, err := execute(t, "convert", "--infer", "--week", "9", "--out", dir, a, b)
	require.NoError(t, err)

	data, err := os.ReadFile(writtenPath(t, out))
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"SANDUICHE A METRO", "PADARIA", "03/2024", "9", "0.660", "43.49"}, records[1])
	assert.Equal(t, []string{"PAO FRANCES", "PADARIA", "03/2024", "9", "5.500", "27.50"}, records[2])

	metrics, err := os.ReadFile(filepath.Join(dir, "lince.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "lince_documents_total")
}

func TestConvert_MissingMetadata(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)

	_, err := execute(t, "convert", "--out", dir, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrMissingSector)
	assert.ErrorIs(t, err, service.ErrMissingMonth)
	assert.ErrorIs(t, err, service.ErrMissingWeek)

	assert.Empty(t, sheets(t, dir, "*perdas_lince.xlsx"))
}

func TestConvert_NoData(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	empty := writeReport(t, dir, "vazio.txt", "Lince - Perdas por Departamento\nPágina 1")
	t.Setenv("METRICS_ENABLED", "true")

	out, err := execute(t, "convert", "--sector", "X", "--month", "01/2024", "--week", "1", "--out", dir, empty)
	assert.ErrorIs(t, err, service.ErrNoData)
	assert.Contains(t, out, "vazio.txt: no data extracted")
	assert.Empty(t, sheets(t, dir, "*perdas_lince.xlsx"))

	metrics, err := os.ReadFile(filepath.Join(dir, "lince.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `lince_batches_total{result="empty"} 1`)
}

func TestConvert_UnsupportedFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	doc := writeReport(t, dir, "a.docx", "x")

	_, err := execute(t, "convert", "--sector", "X", "--month", "01/2024", "--week", "1", "--out", dir, doc)
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestConvert_InvalidFlag(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)

	_, err := execute(t, "convert", "--sector", "X", "--month", "01/2024", "--week", "1", "--format", "ods", "--out", dir, a)
	assert.ErrorContains(t, err, "OUTPUT_FORMAT")
}

func TestInspect(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)

	out, err := execute(t, "inspect", a)
	require.NoError(t, err)
	assert.Contains(t, out, "000101:code")
	assert.Contains(t, out, "-> PAO FRANCES | qty 2.000 | value 10.00")
	assert.Contains(t, out, "-> SANDUICHE A METRO | qty 0.660 | value 43.49")
	assert.Contains(t, out, "2 of 2 line(s) accepted")
}

func TestWatch_Once(t *testing.T) {
	clearEnv(t)
	inbox := t.TempDir()
	outDir := t.TempDir()
	writeReport(t, inbox, "b.txt", reportB)
	writeReport(t, inbox, "a.txt", reportA)
	writeReport(t, inbox, "notas.md", "ignored")

	out, err := execute(t, "watch", "--once", "--inbox", inbox, "--sector", "PADARIA", "--out", outDir, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2 product(s) from 2 file(s)")

	assert.Len(t, sheets(t, outDir, "*_perdas_lince.csv"), 1)

	left, err := filepath.Glob(filepath.Join(inbox, "*.txt"))
	require.NoError(t, err)
	assert.Empty(t, left)

	moved, err := filepath.Glob(filepath.Join(inbox, processedDir, "*", "*.txt"))
	require.NoError(t, err)
	assert.Len(t, moved, 2)

	_, err = os.Stat(filepath.Join(inbox, "notas.md"))
	assert.NoError(t, err)
}

func TestWatch_EmptyInbox(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "watch", "--once", "--inbox", t.TempDir(), "--sector", "X", "--out", t.TempDir())
	assert.NoError(t, err)
}

func TestWatch_InvalidSchedule(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "watch", "--once", "--inbox", t.TempDir(), "--schedule", "sometimes")
	assert.ErrorContains(t, err, "invalid schedule")
}

func TestConvert_BatchesDoNotOverwrite(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)
	b := writeReport(t, dir, "b.txt", reportB)
	args := []string{"convert", "--sector", "PADARIA", "--month", "03/2024", "--format", "csv", "--out", dir}

	first, err := execute(t, append(args, "--week", "11", a)...)
	require.NoError(t, err)
	second, err := execute(t, append(args, "--week", "12", b)...)
	require.NoError(t, err)

	assert.NotEqual(t, writtenPath(t, first), writtenPath(t, second))
	assert.Len(t, sheets(t, dir, "*_perdas_lince.csv"), 2)

	data, err := os.ReadFile(writtenPath(t, first))
	require.NoError(t, err)
	assert.Contains(t, string(data), ",11,")
}

func TestHistory(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	a := writeReport(t, dir, "a.txt", reportA)
	b := writeReport(t, dir, "b.txt", reportB)
	args := []string{"convert", "--sector", "PADARIA", "--month", "03/2024", "--format", "csv", "--out", dir}

	first, err := execute(t, append(args, "--week", "11", a)...)
	require.NoError(t, err)
	second, err := execute(t, append(args, "--week", "12", b)...)
	require.NoError(t, err)
	firstID, secondID := batchID(t, first), batchID(t, second)

	out, err := execute(t, "history", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, firstID)
	assert.Contains(t, out, secondID)

	dest := filepath.Join(t.TempDir(), "copia.csv")
	_, err = execute(t, "history", "export", firstID, dest, "--out", dir)
	require.NoError(t, err)
	want, err := os.ReadFile(writtenPath(t, first))
	require.NoError(t, err)
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	out, err = execute(t, "history", "rm", firstID, "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "removed")

	_, err = os.Stat(writtenPath(t, first))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(writtenPath(t, second))
	assert.NoError(t, err)

	out, err = execute(t, "history", "--out", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, firstID)
	assert.Contains(t, out, secondID)

	_, err = execute(t, "history", "rm", "not-a-uuid", "--out", dir)
	assert.ErrorContains(t, err, "invalid batch id")
}

func TestHistory_Empty(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "history", "--out", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no stored sheets")
}
