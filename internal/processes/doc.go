// Package processes provides the built-in process plugins and the helpers
// that register them. Each plugin writes its deliverables under
// <output>/comprobantes_refinado so the result packager can collect them.
//
// Built-in plugins:
//   - comprobantes: extracts operations from statement PDFs with pdftotext
//   - copia: archives the input as-is with its size and checksum
//
// External plugins are discovered from manifest files by the external package.
package processes
