// Package otel publishes client metrics through an OpenTelemetry Meter.
//
// [NewExporter] registers one Int64ObservableCounter per client counter and
// one Int64ObservableGauge per login latency bucket. A single callback reads
// [cafeauth.Client.MetricsSnapshot] on each collection. Callers own the
// MeterProvider.
package otel
