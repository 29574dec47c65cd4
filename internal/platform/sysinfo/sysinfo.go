package sysinfo

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

// Snapshot is a point-in-time view of host resource usage. Percentages are
// rounded to two decimals.
type Snapshot struct {
	CPUUsage          float64 `json:"cpu_usage"`
	MemoryUsage       float64 `json:"memory_usage"`
	DiskUsage         float64 `json:"disk_usage"`
	NetworkIn         uint64  `json:"network_in"`
	NetworkOut        uint64  `json:"network_out"`
	ActiveConnections int     `json:"active_connections"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
}

// Option configures a Collector.
type Option func(*Collector)

// WithProcFS reads from fs instead of the default /proc mount.
func WithProcFS(fs procfs.FS) Option {
	return func(c *Collector) {
		c.fs = fs
		c.fsSet = true
	}
}

// WithDiskPath sets the filesystem whose usage is reported. Defaults to "/".
func WithDiskPath(path string) Option {
	return func(c *Collector) { c.diskPath = path }
}

// WithConnections sets the source of the active connection count.
func WithConnections(fn func() int) Option {
	return func(c *Collector) { c.connections = fn }
}

// WithClock overrides the time source used for uptime.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) { c.now = now }
}

// Collector samples host metrics.
type Collector struct {
	fs          procfs.FS
	fsSet       bool
	diskPath    string
	connections func() int
	now         func() time.Time

	mu      sync.Mutex
	lastCPU *procfs.CPUStat
}

// NewCollector opens the default procfs mount unless WithProcFS is given.
func NewCollector(opts ...Option) (*Collector, error) {
	c := &Collector{
		diskPath:    "/",
		connections: func() int { return 0 },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !c.fsSet {
		fs, err := procfs.NewDefaultFS()
		if err != nil {
			return nil, fmt.Errorf("open procfs: %w", err)
		}
		c.fs = fs
	}
	return c, nil
}

// Snapshot samples every metric. CPU usage is measured since the previous
// call, or since boot on the first one.
func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	stat, err := c.fs.Stat()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read /proc/stat: %w", err)
	}
	meminfo, err := c.fs.Meminfo()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read /proc/meminfo: %w", err)
	}
	netDev, err := c.fs.NetDev()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read /proc/net/dev: %w", err)
	}
	disk, err := diskUsage(c.diskPath)
	if err != nil {
		return Snapshot{}, fmt.Errorf("statfs %s: %w", c.diskPath, err)
	}

	rx, tx := networkTotals(netDev)
	uptime := c.now().Unix() - int64(stat.BootTime)
	if uptime < 0 {
		uptime = 0
	}

	return Snapshot{
		CPUUsage:          round2(c.cpuUsage(stat.CPUTotal)),
		MemoryUsage:       round2(memoryUsage(meminfo)),
		DiskUsage:         round2(disk),
		NetworkIn:         rx,
		NetworkOut:        tx,
		ActiveConnections: c.connections(),
		UptimeSeconds:     uptime,
	}, nil
}

func (c *Collector) cpuUsage(current procfs.CPUStat) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := procfs.CPUStat{}
	if c.lastCPU != nil {
		prev = *c.lastCPU
	}
	c.lastCPU = &current

	total := cpuTotal(current) - cpuTotal(prev)
	idle := (current.Idle + current.Iowait) - (prev.Idle + prev.Iowait)
	if total <= 0 {
		return 0
	}
	return (total - idle) / total * 100
}

func cpuTotal(s procfs.CPUStat) float64 {
	// guest time is already included in user and nice
	return s.User + s.Nice + s.System + s.Idle + s.Iowait + s.IRQ + s.SoftIRQ + s.Steal
}

func memoryUsage(m procfs.Meminfo) float64 {
	if m.MemTotal == nil || *m.MemTotal == 0 {
		return 0
	}
	available := uint64(0)
	switch {
	case m.MemAvailable != nil:
		available = *m.MemAvailable
	case m.MemFree != nil:
		available = *m.MemFree
	}
	if available > *m.MemTotal {
		return 0
	}
	return float64(*m.MemTotal-available) / float64(*m.MemTotal) * 100
}

// networkTotals sums received and transmitted bytes over every interface
// except loopback.
func networkTotals(dev procfs.NetDev) (rx, tx uint64) {
	for name, line := range dev {
		if name == "lo" {
			continue
		}
		rx += line.RxBytes
		tx += line.TxBytes
	}
	return rx, tx
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
