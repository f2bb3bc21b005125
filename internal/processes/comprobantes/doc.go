// Package comprobantes implements the built-in process that refines bank
// statement PDFs into a table of operations.
//
// Text is extracted with pdftotext from poppler-utils. Every page with text
// becomes one row of operaciones.csv carrying the first date and amount found
// on it, and the source PDF is copied next to the table.
package comprobantes
