// Package filesystem provides the on-disk artifact store: staging of uploaded
// inputs and the per-process output trees.
//
// Layout below the configured roots:
//
//	<uploads>/<filename>     staged inputs, overwritten by same-name uploads
//	<outputs>/<process>/     output tree of each process, never cleared
package filesystem
