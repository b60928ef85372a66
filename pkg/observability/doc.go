/*
Package observability exposes agent activity as Prometheus metrics.

Metrics are recorded through domain.LifecycleHooks, so any agent built with
bmsagent.WithLifecycleHooks(metrics.Hooks()) is instrumented without further wiring.
*/
package observability
