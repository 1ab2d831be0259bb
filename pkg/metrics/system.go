package metrics

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SampleSystem records a single host resource snapshot into the
// SystemCPUPercent and SystemMemoryUsedBytes gauges. It is called every
// five seconds from cmd/gossipnode's own sampling loop, separate from
// the engine's telemetry tick; failures are ignored, since
// system metrics are best-effort observability and never gate
// replication correctness.
func SampleSystem(ctx context.Context, serverID string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		SystemCPUPercent.WithLabelValues(serverID).Set(percents[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		SystemMemoryUsedBytes.WithLabelValues(serverID).Set(float64(vm.Used))
	}
}
