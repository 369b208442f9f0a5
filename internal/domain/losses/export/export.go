// Package export writes the output sheet of a batch as XLSX or CSV.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DefaultSheet is the sheet name of the XLSX output.
const DefaultSheet = "Perdas"

// Headers are the column titles of the sheet, in column order.
var Headers = []string{"Produto", "Setor", "Mês", "Semana", "Quantidade", "Valor"}

// Writer renders rows to w.
type Writer interface {
	Write(w io.Writer, rows []model.Row) error
	Extension() string
	ContentType() string
}

// NewWriter returns the writer for format ("xlsx" or "csv"). sheet is only
// used by the XLSX writer.
func NewWriter(format, sheet string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatXLSX:
		return NewExcelWriter(sheet), nil
	case FormatCSV:
		return NewCSVWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// FileName replaces the extension of name with the writer's.
func FileName(name string, w Writer) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name + "." + w.Extension()
}

// weekValue keeps numeric weeks numeric in the sheet.
func weekValue(week string) any {
	if n, err := strconv.Atoi(week); err == nil {
		return n
	}
	return week
}
