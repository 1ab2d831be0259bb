// Package metrics exposes Prometheus counters and gauges for the
// causal replication engine, grounded on
// OmishaPatel-DistributedFileStorage/backend/pkg/metrics/metrics.go's
// promauto-based registration style, adapted from file-storage
// operations to gossip/replication ones.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsAccepted counts novel records accepted through either
	// the local-submission or remote-receipt path.
	RecordsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causal_gossip_records_accepted_total",
		Help: "Total number of records accepted (local submission or novel remote receipt)",
	}, []string{"source", "server_id"})

	// RecordsRejected counts remote records that failed the novelty
	// test and were discarded without insertion or rebroadcast.
	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causal_gossip_records_rejected_total",
		Help: "Total number of remote records rejected by the novelty test",
	}, []string{"server_id"})

	// DecodeFailures counts overlay payloads that could not be
	// decoded into a DataWithClock record.
	DecodeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causal_gossip_decode_failures_total",
		Help: "Total number of overlay payloads dropped due to decode failure",
	}, []string{"server_id"})

	// PublishFailures counts publish attempts that ultimately failed
	// after retry/circuit-breaker handling.
	PublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "causal_gossip_publish_failures_total",
		Help: "Total number of publish attempts that failed",
	}, []string{"server_id"})

	// ReplicaSize is the current number of distinct records in the
	// replica, sampled on each telemetry tick.
	ReplicaSize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causal_gossip_replica_size",
		Help: "Current number of distinct records in the replica",
	}, []string{"server_id"})

	// KnownPeers is the current size of the adapter's known-peer set.
	KnownPeers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causal_gossip_known_peers",
		Help: "Current number of known peer addresses",
	}, []string{"server_id"})

	// SelfClock is the local node's own counter within its vector
	// clock, a monotonically nondecreasing value per spec.md §8's
	// clock-monotonicity invariant.
	SelfClock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causal_gossip_self_clock",
		Help: "The local node's own vector-clock counter",
	}, []string{"server_id"})

	// SystemCPUPercent and SystemMemoryUsedBytes are periodic host
	// resource snapshots, grounded on
	// OmishaPatel-DistributedFileStorage/backend/pkg/metrics/system_metrics.go.
	SystemCPUPercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causal_gossip_system_cpu_percent",
		Help: "Host CPU utilization percentage",
	}, []string{"server_id"})

	SystemMemoryUsedBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "causal_gossip_system_memory_used_bytes",
		Help: "Host memory used in bytes",
	}, []string{"server_id"})
)
