/*
Package observability turns engine lifecycle events into Prometheus metrics
and structured log lines.

Metrics.Hooks and LoggingHooks both return domain.LifecycleHooks; Chain
combines them so one engine can feed several sinks.
*/
package observability
