package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Gauges are point-in-time engine measurements collected by the owner
// of the live state.
type Gauges struct {
	Sessions    int
	Rooms       int
	OnlineUsers int
}

// HealthWorker periodically logs process self-stats (RSS, CPU) together
// with engine gauges. Purely observational.
type HealthWorker struct {
	log      *slog.Logger
	interval time.Duration
	gauges   func() Gauges
}

func NewHealthWorker(log *slog.Logger, interval time.Duration, gauges func() Gauges) *HealthWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthWorker{log: log, interval: interval, gauges: gauges}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			g := w.gauges()
			w.log.Info("Engine health",
				"sessions", g.Sessions,
				"rooms", g.Rooms,
				"online_users", g.OnlineUsers,
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
