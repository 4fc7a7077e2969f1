// Package exporter writes tables and descriptive summaries to disk.
//
// CSVWriter writes CSV files with an optional UTF-8 byte order mark for
// Excel. WriteTable renders domain tables, with list cells written as
// list literals so they load back through the list parser. StreamWriter
// writes large outputs row by row.
//
// WorkbookExporter writes several summaries into one xlsx workbook, one
// sheet per summary.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	err := w.WriteTable("recipes_univariate.csv", table, exporter.TableOptions{BOMPrefix: true})
//
//	wb := exporter.NewWorkbookExporter(paths, logger)
//	path, err := wb.ExportSummaries("summaries.xlsx", []exporter.NamedSheet{
//		{Name: "minutes", Sheet: summary},
//	})
package exporter
