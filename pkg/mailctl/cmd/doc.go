// Package cmd implements the cobra command tree for the mailctl CLI: sending
// composed mail, rendering templates, inspecting configuration, storing the
// SMTP password in the keyring and shell completion.
package cmd
