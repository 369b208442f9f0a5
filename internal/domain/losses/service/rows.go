package service

import "github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"

// Columns is the fixed column order of the output sheet.
var Columns = []string{"Product", "Sector", "Month", "Week", "Quantity", "Value"}

// Rows stamps every record with the batch metadata, keeping record order. A
// record grouped per section carries its own sector.
func Rows(records []model.AggregateRecord, meta model.BatchMetadata) []model.Row {
	rows := make([]model.Row, len(records))
	for i, r := range records {
		sector := meta.Sector
		if r.Section != "" {
			sector = r.Section
		}
		rows[i] = model.Row{
			Product:  r.Product,
			Sector:   sector,
			Month:    meta.Month,
			Week:     meta.Week,
			Quantity: r.Quantity.Round(model.QuantityPlaces),
			Value:    r.Value,
		}
	}
	return rows
}
