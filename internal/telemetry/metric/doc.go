// Package metric provides Prometheus metrics for Timekeep.
//
//   - prometheus.go: the registry, HTTP and domain metrics, /metrics handler
//   - collector.go: scrape-time collector for storage health
//
// Registry implements the service Observer interface, so services report
// sign-ins and timer events without importing Prometheus.
package metric
