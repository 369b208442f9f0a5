package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

// csvRow is the CSV shape of a model.Row. Numbers use a dot decimal point
// and fixed precision.
type csvRow struct {
	Produto    string `csv:"Produto"`
	Setor      string `csv:"Setor"`
	Mes        string `csv:"Mês"`
	Semana     string `csv:"Semana"`
	Quantidade string `csv:"Quantidade"`
	Valor      string `csv:"Valor"`
}

// CSVWriter writes the sheet as comma-separated text with a header row.
type CSVWriter struct{}

// NewCSVWriter creates a CSV writer.
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

func (c *CSVWriter) Extension() string   { return FormatCSV }
func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// Write renders rows as CSV.
func (c *CSVWriter) Write(w io.Writer, rows []model.Row) error {
	out := make([]csvRow, len(rows))
	for i, r := range rows {
		out[i] = csvRow{
			Produto:    r.Product,
			Setor:      r.Sector,
			Mes:        r.Month,
			Semana:     r.Week,
			Quantidade: r.Quantity.StringFixed(model.QuantityPlaces),
			Valor:      r.Value.String(),
		}
	}

	if err := gocsv.Marshal(&out, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
