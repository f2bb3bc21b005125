// Package external discovers process plugins described by manifest files
// and runs them as child processes.
//
// Each plugin lives in its own folder below the plugins directory:
//
//	procesos/
//	  conciliacion/
//	    manifest.toml
//	    conciliar.py
//
// with a manifest such as:
//
//	name        = "conciliacion"
//	description = "Concilia extractos contra el mayor"
//	command     = "python3"
//	args        = ["conciliar.py", "{input}", "{output}"]
//
// The command runs with the plugin folder as working directory. It must
// print a JSON object on stdout, which becomes the run summary. Exit code
// 75 (EX_TEMPFAIL) marks a recoverable failure; any other non-zero exit is
// fatal and carries stderr as the reason.
package external
