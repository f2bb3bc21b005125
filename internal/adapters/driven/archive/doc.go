// Package archive packages a process's deliverables into a zip archive.
//
// Only two kinds of file are ever included:
//
//	comprobantes_refinado/operaciones.csv   -> operaciones.csv
//	comprobantes_refinado/pdfs/*.pdf        -> pdfs/<name>.pdf
//
// Anything else in the output tree is ignored.
package archive
