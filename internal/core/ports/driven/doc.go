// Package driven lists what the core needs from infrastructure.
//
// Process plugins and the sources that discover them, the artifact store
// that stages uploads and owns the output tree, the packager that zips
// deliverables, the usage ledger and the settings file are all reached
// through the interfaces here. Adapters under internal/adapters/driven
// and internal/processes implement them; this package imports domain only.
package driven
