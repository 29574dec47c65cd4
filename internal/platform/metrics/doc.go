// Package metrics owns the Prometheus registry of the service: HTTP request
// metrics, deployment transition counters, the number of running lifecycle
// sequences and open client connections. It also exports the /metrics
// exposition handler.
package metrics
