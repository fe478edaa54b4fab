// Package output writes mailctl command results as JSON or YAML.
package output
