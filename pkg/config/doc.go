// Package config loads the mail composer configuration from YAML files, the
// process environment and the OS keyring, and reports unusable values as
// *Error at load time.
package config
