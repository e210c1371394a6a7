// Package telemetry wires OpenTelemetry traces, logs and metrics for the
// Gramz API server and worker.
//
// Exporters speak OTLP over HTTP. A collector URL with a base path
// (for example https://collector.example.com/otlp) is split into a host
// and per-signal paths.
package telemetry
