// Package prometheus exposes client metrics as a Prometheus collector.
//
// [Exporter] implements prometheus.Collector over [cafeauth.Client.MetricsSnapshot].
// Counters are published as cafeauth_*_total; login latency is the
// cafeauth_login_latency_seconds histogram. Register the exporter with your
// own registry, or serve [Exporter.Handler], which uses a private one.
package prometheus
