/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package detector

import (
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

var procStartTime = time.Now()

// sysStats is just a grouping, don't use directly
type sysStats struct {
	uptimeSec      int64
	cpuPCT         int64
	rss            int64
	numFDs         int64
	goRoutines     int64
	heapAlloc      int64
	gcPauseTotalNs int64
	gcCount        int64
}

// CollectSysStats gathers process and runtime statistics
func (s *Stats) CollectSysStats() error {
	m := &runtime.MemStats{}
	runtime.ReadMemStats(m)

	atomic.StoreInt64(&s.uptimeSec, time.Now().Unix()-procStartTime.Unix())
	atomic.StoreInt64(&s.goRoutines, int64(runtime.NumGoroutine()))
	atomic.StoreInt64(&s.heapAlloc, int64(m.HeapAlloc))
	atomic.StoreInt64(&s.gcPauseTotalNs, int64(m.PauseTotalNs))
	atomic.StoreInt64(&s.gcCount, int64(m.NumGC))

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	if val, err := proc.Percent(0); err == nil {
		atomic.StoreInt64(&s.cpuPCT, int64(val*100))
	}
	if val, err := proc.MemoryInfo(); err == nil {
		atomic.StoreInt64(&s.rss, int64(val.RSS))
	}
	if val, err := proc.NumFDs(); err == nil {
		atomic.StoreInt64(&s.numFDs, int64(val))
	}
	return nil
}

func (s *sysStats) export(counters map[string]int64) {
	counters["vigil.process.uptime"] = atomic.LoadInt64(&s.uptimeSec)
	counters["vigil.process.cpu_pct"] = atomic.LoadInt64(&s.cpuPCT)
	counters["vigil.process.rss"] = atomic.LoadInt64(&s.rss)
	counters["vigil.process.num_fds"] = atomic.LoadInt64(&s.numFDs)
	counters["vigil.runtime.cpu.goroutines"] = atomic.LoadInt64(&s.goRoutines)
	counters["vigil.runtime.mem.heap.alloc"] = atomic.LoadInt64(&s.heapAlloc)
	counters["vigil.runtime.gc.pause_total"] = atomic.LoadInt64(&s.gcPauseTotalNs)
	counters["vigil.runtime.gc.count"] = atomic.LoadInt64(&s.gcCount)
}
