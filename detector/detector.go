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

// Package detector observes which peers of a cluster layout are reachable,
// failed or stale, and reports an aggregated connectivity graph over a
// short window of probe iterations. It only observes; acting on the
// reports is somebody else's job.
package detector

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/vigil/detector/protocol"
	vstats "github.com/facebook/vigil/detector/stats"
)

// FailureDetector runs bounded polling rounds against the cluster. One
// instance supports at most one Poll at a time; the caller guarantees
// that. The only state carried between rounds is the adaptive response
// timeout and the heartbeat counter.
type FailureDetector struct {
	cfg           *Config
	localEndpoint string

	// period is the current per-peer response timeout, kept within
	// [InitPeriod, MaxPeriod]
	period    time.Duration
	heartbeat HeartbeatCounter

	stats StatsServer
}

// noopStats swallows stats when the caller doesn't care
type noopStats struct{}

func (noopStats) SetPeersTotal(int)                        {}
func (noopStats) SetPeersReachable(int)                    {}
func (noopStats) SetPeersFailed(int)                       {}
func (noopStats) SetPeersWrongEpoch(int)                   {}
func (noopStats) SetPollEpoch(int64)                       {}
func (noopStats) SetRoundDuration(time.Duration)           {}
func (noopStats) IncRounds()                               {}
func (noopStats) IncProbes()                               {}
func (noopStats) IncProbeFailures()                        {}
func (noopStats) ObserveProbeRTT(string, time.Duration)    {}
func (noopStats) SetPeerStats(*vstats.Stat)                {}
func (noopStats) CollectSysStats() error                   { return nil }

// New creates a FailureDetector for the given local endpoint
func New(localEndpoint string, cfg *Config, stats StatsServer) *FailureDetector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if stats == nil {
		stats = noopStats{}
	}
	return &FailureDetector{
		cfg:           cfg,
		localEndpoint: localEndpoint,
		period:        cfg.InitPeriod,
		stats:         stats,
	}
}

// Period returns the current adaptive response timeout
func (d *FailureDetector) Period() time.Duration {
	return d.period
}

// Poll runs one full round: FailureThreshold probe iterations over every
// server in the layout, then aggregation. Peer-level failures of any kind
// never escape, they surface only inside the report; the only possible
// error is a broken configuration.
func (d *FailureDetector) Poll(ctx context.Context, layout Layout, rt Runtime, metrics protocol.SequencerMetrics) (*Report, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}
	allServers := layout.AllServers()
	epoch := layout.Epoch()

	clients := make(map[string]PeerClient, len(allServers))
	for _, server := range allServers {
		client, err := rt.Router(server)
		if err != nil {
			log.Warningf("no router for %s: %v", server, err)
			clients[server] = nil
			continue
		}
		client.SetTimeout(d.period)
		clients[server] = client
	}
	return d.pollRound(ctx, epoch, allServers, clients, metrics, layout), nil
}

func (d *FailureDetector) pollRound(ctx context.Context, epoch int64, allServers []string, clients map[string]PeerClient, metrics protocol.SequencerMetrics, layout Layout) *Report {
	start := time.Now()
	window := make([]protocol.ClusterState, 0, d.cfg.FailureThreshold)
	reports := make([]*Report, 0, d.cfg.FailureThreshold)

	for i := 0; i < d.cfg.FailureThreshold; i++ {
		iterStart := time.Now()
		report := d.pollIteration(ctx, epoch, allServers, clients, metrics, layout)
		reports = append(reports, report)
		window = append(window, report.ClusterState)
		log.Debugf("iteration %d/%d: reachable=%v failed=%v wrongEpochs=%v period=%v",
			i+1, d.cfg.FailureThreshold, report.ReachableNodes(), report.FailedNodes(), report.WrongEpochs, d.period)
		sleepWithContext(ctx, d.tuneIterationTimeouts(report, iterStart, clients))
	}

	final := d.aggregateRound(reports, window, epoch, clients, layout)

	d.stats.IncRounds()
	d.stats.SetRoundDuration(time.Since(start))
	d.stats.SetPollEpoch(epoch)
	d.stats.SetPeersTotal(len(allServers))
	d.publishPeerStats(final)
	return final
}

// pollIteration is one parallel fan-out of probes plus one ClusterState
// construction. Per-probe failure stays inside the iteration.
func (d *FailureDetector) pollIteration(ctx context.Context, epoch int64, allServers []string, clients map[string]PeerClient, metrics protocol.SequencerMetrics, layout Layout) *Report {
	probes := make(map[string]*probeFuture, len(allServers))
	for _, server := range allServers {
		client := clients[server]
		if client == nil {
			probes[server] = failedProbe(server, fmt.Errorf("%w: no client for %s", ErrTransport, server))
			continue
		}
		future := newProbeFuture(server)
		probes[server] = future
		go func(server string, client PeerClient, future *probeFuture) {
			probeStart := time.Now()
			state, err := client.NodeState(ctx, epoch)
			future.complete(state, time.Since(probeStart), err)
		}(server, client, future)
	}

	deadline := time.Now().Add(d.period)
	collector := NewCollector(d.localEndpoint, probes, &d.heartbeat)
	state := collector.ClusterState(epoch, metrics, deadline)
	wrongEpochs := collector.WrongEpochs()

	for _, future := range probes {
		if !future.settled() {
			continue
		}
		d.stats.IncProbes()
		if future.err != nil {
			d.stats.IncProbeFailures()
		} else {
			d.stats.ObserveProbeRTT(future.endpoint, future.rtt)
		}
	}

	return &Report{
		PollEpoch:         epoch,
		ResponsiveServers: layout.ActiveLayoutServers(),
		WrongEpochs:       wrongEpochs,
		ClusterState:      state,
	}
}

// tuneIterationTimeouts decides how long to sleep before the next iteration
// and grows the period when the iteration saw failures. The grown period is
// pushed only into the reachable clients; failed clients get theirs at the
// end of the round.
func (d *FailureDetector) tuneIterationTimeouts(report *Report, iterStart time.Time, clients map[string]PeerClient) time.Duration {
	if len(report.FailedNodes()) == 0 {
		return d.cfg.PollInterval
	}
	elapsed := time.Since(iterStart)
	interval := d.cfg.PollInterval
	if d.period-elapsed > interval {
		interval = d.period - elapsed
	}
	d.period = min(d.cfg.MaxPeriod, d.period+d.cfg.PeriodDelta)
	for _, endpoint := range report.ReachableNodes() {
		if client := clients[endpoint]; client != nil {
			client.SetTimeout(d.period)
		}
	}
	return interval
}

// aggregateRound fuses the window into the final report and decays the
// period once per round. A peer that was reachable at any iteration is
// responsive enough: it is dropped from the aggregated wrong epochs, the
// local row of the aggregated state records it OK (so the final report
// does not list it as failed), and it keeps the decayed timeout. Peers
// that never made it get MaxPeriod.
func (d *FailureDetector) aggregateRound(reports []*Report, window []protocol.ClusterState, epoch int64, clients map[string]PeerClient, layout Layout) *Report {
	wrongEpochs := map[string]int64{}
	connected := map[string]bool{}
	failed := map[string]bool{}
	for _, report := range reports {
		for endpoint, serverEpoch := range report.WrongEpochs {
			wrongEpochs[endpoint] = serverEpoch
		}
		for _, endpoint := range report.ReachableNodes() {
			connected[endpoint] = true
		}
		for _, endpoint := range report.FailedNodes() {
			failed[endpoint] = true
		}
	}
	for endpoint := range connected {
		delete(wrongEpochs, endpoint)
		delete(failed, endpoint)
	}

	allConnected := map[string]bool{}
	for endpoint := range connected {
		allConnected[endpoint] = true
	}
	for endpoint := range wrongEpochs {
		allConnected[endpoint] = true
	}

	d.period = max(d.cfg.InitPeriod, d.period-d.cfg.PeriodDelta)
	for endpoint := range allConnected {
		if client := clients[endpoint]; client != nil {
			client.SetTimeout(d.period)
		}
	}
	for endpoint := range failed {
		if client := clients[endpoint]; client != nil {
			client.SetTimeout(d.cfg.MaxPeriod)
		}
	}

	d.stats.SetPeersReachable(len(connected))
	d.stats.SetPeersFailed(len(failed))
	d.stats.SetPeersWrongEpoch(len(wrongEpochs))

	aggregated := AggregateClusterState(d.localEndpoint, window)
	if localNode, ok := aggregated.LocalNode(); ok {
		row := make(map[string]protocol.ConnectionStatus, len(localNode.Connectivity.Connectivity))
		for endpoint, status := range localNode.Connectivity.Connectivity {
			if connected[endpoint] {
				status = protocol.ConnectionOK
			}
			row[endpoint] = status
		}
		localNode.Connectivity.Connectivity = row
		aggregated.Nodes[d.localEndpoint] = localNode
	}

	return &Report{
		PollEpoch:         epoch,
		ResponsiveServers: layout.ActiveLayoutServers(),
		WrongEpochs:       wrongEpochs,
		ClusterState:      aggregated,
	}
}

func (d *FailureDetector) publishPeerStats(report *Report) {
	for endpoint, node := range report.ClusterState.Nodes {
		stat := &vstats.Stat{
			Endpoint:         endpoint,
			Epoch:            node.Connectivity.Epoch,
			HeartbeatCounter: node.Heartbeat.Counter,
			Degree:           node.Connectivity.Degree(),
		}
		if node.Connectivity.Type == protocol.ConnectivityConnected {
			stat.Reachable = 1
		}
		if _, ok := report.WrongEpochs[endpoint]; ok {
			stat.WrongEpoch = 1
		}
		d.stats.SetPeerStats(stat)
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) {
	if duration <= 0 {
		return
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
