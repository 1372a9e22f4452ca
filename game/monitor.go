package game

import (
	"context"
	"time"

	"sanma/common/log"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// LoadInfo 节点负载信息
type LoadInfo struct {
	RoomCount   int     `json:"roomCount"`
	PlayerCount int     `json:"playerCount"`
	CPUUsage    float64 `json:"cpuUsage"` // 0-100
	MemUsage    float64 `json:"memUsage"` // 0-100
}

// CalculateLoad 综合负载评分，CPU 30%、内存 20%、对局数 25%、玩家数 25%
func (li *LoadInfo) CalculateLoad() float64 {
	normRooms := float64(li.RoomCount) / 100.0
	if normRooms > 1.0 {
		normRooms = 1.0
	}
	normPlayers := float64(li.PlayerCount) / 100.0
	if normPlayers > 1.0 {
		normPlayers = 1.0
	}
	return li.CPUUsage*0.3 + li.MemUsage*0.2 + normRooms*100*0.25 + normPlayers*100*0.25
}

// Monitor 周期采集负载
type Monitor struct {
	rm       *RoomManager
	interval time.Duration
	latest   LoadInfo
}

func NewMonitor(rm *RoomManager, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Monitor{rm: rm, interval: interval}
}

// Run 阻塞采集循环，由调用方起协程
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collect()
		}
	}
}

func (m *Monitor) collect() {
	info := LoadInfo{}
	info.RoomCount, info.PlayerCount = m.rm.Stats()

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info.CPUUsage = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemUsage = vm.UsedPercent
	}

	m.latest = info
	log.Debug("负载采集: rooms=%d players=%d cpu=%.1f mem=%.1f score=%.1f",
		info.RoomCount, info.PlayerCount, info.CPUUsage, info.MemUsage, info.CalculateLoad())
}

// Latest 最近一次采集结果
func (m *Monitor) Latest() LoadInfo {
	return m.latest
}
