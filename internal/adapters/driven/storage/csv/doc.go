// Package csv provides the CSV-file implementation of the usage ledger.
//
// The file layout is a header row followed by one row per invocation:
//
//	Fecha,Usuario,Proceso,Archivo,Resultado
//	2024-03-01 10:15:00,ana,comprobantes,marzo.pdf,Éxito
//
// Each Append is a single write to a file opened with O_APPEND, so existing
// rows are never rewritten.
package csv
