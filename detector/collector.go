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
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/vigil/detector/protocol"
)

// probeFuture is the pending result of one probe. The probing goroutine
// fills state/err/rtt and then closes done; readers must only touch the
// fields after done is closed. A future abandoned past its deadline may
// still complete later, nobody will look at it.
type probeFuture struct {
	endpoint string
	done     chan struct{}
	state    *protocol.NodeState
	err      error
	rtt      time.Duration
}

func newProbeFuture(endpoint string) *probeFuture {
	return &probeFuture{endpoint: endpoint, done: make(chan struct{})}
}

// complete resolves the future. Must be called exactly once.
func (f *probeFuture) complete(state *protocol.NodeState, rtt time.Duration, err error) {
	f.state = state
	f.rtt = rtt
	f.err = err
	close(f.done)
}

// failedProbe builds an already-resolved future, for probes that couldn't even start
func failedProbe(endpoint string, err error) *probeFuture {
	f := newProbeFuture(endpoint)
	f.complete(nil, 0, err)
	return f
}

// settled reports whether the future has resolved, without blocking
func (f *probeFuture) settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// await blocks until the future resolves or the deadline passes
func (f *probeFuture) await(deadline time.Time) bool {
	wait := time.Until(deadline)
	if wait <= 0 {
		return f.settled()
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-f.done:
		return true
	case <-timer.C:
		return f.settled()
	}
}

// Collector fuses one iteration's probe futures into a ClusterState
type Collector struct {
	localEndpoint string
	probes        map[string]*probeFuture
	heartbeat     *HeartbeatCounter
}

// NewCollector wraps a set of in-flight probes
func NewCollector(localEndpoint string, probes map[string]*probeFuture, heartbeat *HeartbeatCounter) *Collector {
	return &Collector{
		localEndpoint: localEndpoint,
		probes:        probes,
		heartbeat:     heartbeat,
	}
}

// ClusterState waits for every probe until the deadline and builds the
// iteration's observation. The result has exactly one entry per probe:
// peers that delivered a CONNECTED NodeState at the expected epoch keep it,
// everybody else is synthesized as UNAVAILABLE. The local endpoint never
// trusts a remote reply about itself: its row is rebuilt from the probe
// outcomes, with a fresh heartbeat.
func (c *Collector) ClusterState(epoch int64, metrics protocol.SequencerMetrics, deadline time.Time) protocol.ClusterState {
	nodes := make(map[string]protocol.NodeState, len(c.probes))
	localRow := make(map[string]protocol.ConnectionStatus, len(c.probes))

	for endpoint, future := range c.probes {
		state, err, ok := c.outcome(future, deadline)
		if responded(err, ok) {
			localRow[endpoint] = protocol.ConnectionOK
		} else {
			localRow[endpoint] = protocol.ConnectionFailed
		}
		if endpoint == c.localEndpoint {
			continue
		}
		if ok && err == nil && state != nil &&
			state.Connectivity.Type == protocol.ConnectivityConnected &&
			state.Connectivity.Epoch == epoch {
			nodes[endpoint] = *state
		} else {
			nodes[endpoint] = protocol.UnavailableNodeState(endpoint)
		}
	}

	nodes[c.localEndpoint] = protocol.NodeState{
		Connectivity: protocol.Connected(c.localEndpoint, localRow, epoch),
		Sequencer:    metrics,
		Heartbeat:    c.heartbeat.Next(epoch),
	}
	return protocol.NewClusterState(c.localEndpoint, nodes)
}

// WrongEpochs returns the peers that answered from a different epoch.
// Call it after ClusterState so the futures had their chance to settle.
func (c *Collector) WrongEpochs() map[string]int64 {
	res := map[string]int64{}
	for endpoint, future := range c.probes {
		if !future.settled() {
			continue
		}
		wrongEpoch := &WrongEpochError{}
		if errors.As(future.err, &wrongEpoch) {
			res[endpoint] = wrongEpoch.ServerEpoch
		}
	}
	return res
}

func (c *Collector) outcome(future *probeFuture, deadline time.Time) (*protocol.NodeState, error, bool) {
	if !future.await(deadline) {
		log.Debugf("probe to %s still pending at deadline, abandoning it", future.endpoint)
		return nil, ErrProbeTimeout, false
	}
	return future.state, future.err, true
}

// responded tells whether the probe made it to the peer at all. A wrong
// epoch reply counts: the peer is alive, just not where we expected it.
func responded(err error, settled bool) bool {
	if !settled {
		return false
	}
	if err == nil {
		return true
	}
	wrongEpoch := &WrongEpochError{}
	return errors.As(err, &wrongEpoch)
}
