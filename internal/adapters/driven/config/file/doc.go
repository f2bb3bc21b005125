// Package file persists procdesk settings as a hand-editable TOML file.
package file
