package steps

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
)

// getCellValueFromTable returns the cell of row under columnName, or "" when
// the table has no such column
func getCellValueFromTable(table *godog.Table, row *messages.PickleTableRow, columnName string) string {
	if len(table.Rows) == 0 {
		return ""
	}
	header := table.Rows[0]
	for i, cell := range header.Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

// tableFields reads a two-column "field | value" table
func tableFields(table *godog.Table) map[string]string {
	fields := make(map[string]string)
	for _, row := range table.Rows[1:] {
		field := strings.TrimSpace(getCellValueFromTable(table, row, "field"))
		fields[field] = strings.TrimSpace(getCellValueFromTable(table, row, "value"))
	}
	return fields
}

func intField(fields map[string]string, name string, fallback int) (int, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return v, nil
}

func floatField(fields map[string]string, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("field %s: %w", name, err)
	}
	return v, nil
}
