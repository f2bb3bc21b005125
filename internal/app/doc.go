// Package app wires the core services to their driven adapters according
// to the loaded settings. Front-ends receive a Container and talk only to
// the driving ports it exposes.
package app
