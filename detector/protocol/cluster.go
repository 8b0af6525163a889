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

package protocol

import (
	"fmt"
	"sort"
	"strings"
)

// NodeState is everything one node reports about itself in one observation
type NodeState struct {
	Connectivity NodeConnectivity
	Sequencer    SequencerMetrics
	Heartbeat    HeartbeatTimestamp
}

// UnavailableNodeState synthesizes the observation for a peer we couldn't
// hear from: empty matrix, unknown sequencer, sentinel heartbeat.
func UnavailableNodeState(endpoint string) NodeState {
	return NodeState{
		Connectivity: Unavailable(endpoint),
		Sequencer:    UnknownSequencerMetrics(),
		Heartbeat:    UnknownHeartbeat(),
	}
}

// NotReadyNodeState synthesizes the observation for a peer that is up but
// not bootstrapped yet
func NotReadyNodeState(endpoint string) NodeState {
	return NodeState{
		Connectivity: NotReady(endpoint),
		Sequencer:    UnknownSequencerMetrics(),
		Heartbeat:    UnknownHeartbeat(),
	}
}

// ClusterState is the full graph as seen from LocalEndpoint: one NodeState
// per endpoint, keyed by endpoint. No back-pointers, nodes reference each
// other by name only.
type ClusterState struct {
	LocalEndpoint string
	Nodes         map[string]NodeState
}

// NewClusterState builds a cluster state over the given nodes
func NewClusterState(localEndpoint string, nodes map[string]NodeState) ClusterState {
	return ClusterState{LocalEndpoint: localEndpoint, Nodes: nodes}
}

// IsReady reports whether this observation is consistent: non-empty, every
// node at the same epoch, nobody NOT_READY. Epoch inconsistency between
// members is surfaced here, not repaired.
func (cs ClusterState) IsReady() bool {
	if len(cs.Nodes) == 0 {
		return false
	}
	epoch := int64(0)
	first := true
	for _, node := range cs.Nodes {
		if node.Connectivity.Type == ConnectivityNotReady {
			return false
		}
		if first {
			epoch = node.Connectivity.Epoch
			first = false
			continue
		}
		if node.Connectivity.Epoch != epoch {
			return false
		}
	}
	return true
}

// LocalNode returns the NodeState of the local endpoint
func (cs ClusterState) LocalNode() (NodeState, bool) {
	node, ok := cs.Nodes[cs.LocalEndpoint]
	return node, ok
}

// Endpoints returns the sorted endpoints present in the state
func (cs ClusterState) Endpoints() []string {
	res := make([]string, 0, len(cs.Nodes))
	for endpoint := range cs.Nodes {
		res = append(res, endpoint)
	}
	sort.Strings(res)
	return res
}

func (cs ClusterState) String() string {
	parts := make([]string, 0, len(cs.Nodes))
	for _, endpoint := range cs.Endpoints() {
		parts = append(parts, cs.Nodes[endpoint].Connectivity.String())
	}
	return fmt.Sprintf("ClusterState{local=%s, nodes=[%s]}", cs.LocalEndpoint, strings.Join(parts, ", "))
}
