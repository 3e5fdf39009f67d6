// Package metrics records build metrics for pagesmith.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection never needs nil checks:
//
//	b := build.New(cfg, build.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The Prometheus implementation registers on a caller-supplied registry. A
// one-shot CLI build exports it with WriteTextfile for the node exporter
// textfile collector.
package metrics
