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
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclesh/welford"

	vstats "github.com/facebook/vigil/detector/stats"
)

// StatsServer is a stats server interface
type StatsServer interface {
	SetPeersTotal(total int)
	SetPeersReachable(reachable int)
	SetPeersFailed(failed int)
	SetPeersWrongEpoch(wrongEpoch int)
	SetPollEpoch(epoch int64)
	SetRoundDuration(duration time.Duration)
	IncRounds()
	IncProbes()
	IncProbeFailures()
	ObserveProbeRTT(endpoint string, rtt time.Duration)
	SetPeerStats(stat *vstats.Stat)
	CollectSysStats() error
}

// Stats is an implementation of StatsServer on atomics, plus per-peer rows
type Stats struct {
	sync.Mutex

	pollerStats
	sysStats

	peerStats vstats.Stats
	rtt       map[string]*rttAggregate
}

// rttAggregate is a streaming mean/variance of probe round-trips
type rttAggregate struct {
	w     *welford.Stats
	count uint64
}

// pollerStats is just a grouping, don't use directly
type pollerStats struct {
	peersTotal      int64
	peersReachable  int64
	peersFailed     int64
	peersWrongEpoch int64
	pollEpoch       int64
	roundDuration   int64
	rounds          int64
	probes          int64
	probeFailures   int64
}

// NewStats creates a new instance of Stats
func NewStats() *Stats {
	return &Stats{
		peerStats: vstats.Stats{},
		rtt:       map[string]*rttAggregate{},
	}
}

// SetPeersTotal atomically sets the number of peers in the layout
func (s *Stats) SetPeersTotal(total int) {
	atomic.StoreInt64(&s.peersTotal, int64(total))
}

// SetPeersReachable atomically sets the number of reachable peers
func (s *Stats) SetPeersReachable(reachable int) {
	atomic.StoreInt64(&s.peersReachable, int64(reachable))
}

// SetPeersFailed atomically sets the number of failed peers
func (s *Stats) SetPeersFailed(failed int) {
	atomic.StoreInt64(&s.peersFailed, int64(failed))
}

// SetPeersWrongEpoch atomically sets the number of wrong-epoch peers
func (s *Stats) SetPeersWrongEpoch(wrongEpoch int) {
	atomic.StoreInt64(&s.peersWrongEpoch, int64(wrongEpoch))
}

// SetPollEpoch atomically sets the epoch of the last round
func (s *Stats) SetPollEpoch(epoch int64) {
	atomic.StoreInt64(&s.pollEpoch, epoch)
}

// SetRoundDuration atomically sets the duration of the last round
func (s *Stats) SetRoundDuration(duration time.Duration) {
	atomic.StoreInt64(&s.roundDuration, duration.Nanoseconds())
}

// IncRounds atomically adds one completed round
func (s *Stats) IncRounds() {
	atomic.AddInt64(&s.rounds, 1)
}

// IncProbes atomically adds one settled probe
func (s *Stats) IncProbes() {
	atomic.AddInt64(&s.probes, 1)
}

// IncProbeFailures atomically adds one failed probe
func (s *Stats) IncProbeFailures() {
	atomic.AddInt64(&s.probeFailures, 1)
}

// ObserveProbeRTT feeds one probe round-trip into the per-peer aggregates
func (s *Stats) ObserveProbeRTT(endpoint string, rtt time.Duration) {
	s.Lock()
	defer s.Unlock()
	agg, ok := s.rtt[endpoint]
	if !ok {
		agg = &rttAggregate{w: welford.New()}
		s.rtt[endpoint] = agg
	}
	agg.w.Add(float64(rtt.Nanoseconds()))
	agg.count++
}

// SetPeerStats updates the row of one peer
func (s *Stats) SetPeerStats(stat *vstats.Stat) {
	s.Lock()
	defer s.Unlock()
	if agg, ok := s.rtt[stat.Endpoint]; ok && agg.count > 0 {
		stat.RTTMeanNS = agg.w.Mean()
		stat.RTTStddevNS = agg.w.Stddev()
		stat.RTTVarianceNS = agg.w.Variance()
	}
	if i := s.peerStats.Index(stat); i >= 0 {
		s.peerStats[i] = stat
		return
	}
	s.peerStats = append(s.peerStats, stat)
}

// GetPeerStats returns a snapshot of the per-peer rows
func (s *Stats) GetPeerStats() vstats.Stats {
	s.Lock()
	defer s.Unlock()
	snapshot := make(vstats.Stats, len(s.peerStats))
	for i, stat := range s.peerStats {
		c := *stat
		snapshot[i] = &c
	}
	snapshot.Sort()
	return snapshot
}

// GetCounters returns all counters as a flat map
func (s *Stats) GetCounters() vstats.Counters {
	res := vstats.Counters{
		"vigil.poller.peers.total":       atomic.LoadInt64(&s.peersTotal),
		"vigil.poller.peers.reachable":   atomic.LoadInt64(&s.peersReachable),
		"vigil.poller.peers.failed":      atomic.LoadInt64(&s.peersFailed),
		"vigil.poller.peers.wrong_epoch": atomic.LoadInt64(&s.peersWrongEpoch),
		"vigil.poller.poll_epoch":        atomic.LoadInt64(&s.pollEpoch),
		"vigil.poller.round_duration_ns": atomic.LoadInt64(&s.roundDuration),
		"vigil.poller.rounds":            atomic.LoadInt64(&s.rounds),
		"vigil.poller.probes":            atomic.LoadInt64(&s.probes),
		"vigil.poller.probe_failures":    atomic.LoadInt64(&s.probeFailures),
	}
	s.sysStats.export(res)
	return res
}
