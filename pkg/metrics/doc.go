// Package metrics defines Prometheus metrics for mail delivery and template
// rendering.
package metrics
