// Package promcollector exports device metrics to Prometheus.
//
//	mc, err := promcollector.New(prometheus.DefaultRegisterer, "blockstore")
//	dev, err := blockstore.New(blockstore.WithMetricsCollector(mc))
//
// Usage gauges reflect the device that last reported; register one
// collector per device (with distinct namespaces or registries) when
// several devices are exported.
package promcollector
