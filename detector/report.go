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
	"sort"

	"github.com/facebook/vigil/detector/protocol"
)

// Report is the outcome of polling the cluster: what we saw, who answered
// from the wrong epoch, and who was supposed to be there. The aggregated
// report of a full round is the only way peer health travels upward.
type Report struct {
	// PollEpoch is the epoch the round ran at
	PollEpoch int64
	// ResponsiveServers is the set of active layout servers when the round
	// started: the input to the round, not its verdict
	ResponsiveServers []string
	// WrongEpochs maps peers that responded to the epoch they advertised,
	// when it differs from PollEpoch
	WrongEpochs map[string]int64
	// ClusterState is the observation itself
	ClusterState protocol.ClusterState
}

// ReachableNodes are the endpoints that delivered a usable NodeState:
// exactly those with a CONNECTED entry in the cluster state
func (r *Report) ReachableNodes() []string {
	res := []string{}
	for endpoint, node := range r.ClusterState.Nodes {
		if node.Connectivity.Type == protocol.ConnectivityConnected {
			res = append(res, endpoint)
		}
	}
	sort.Strings(res)
	return res
}

// FailedNodes are the endpoints whose probe failed on the wire, as recorded
// in the local node's connectivity row. Wrong-epoch peers are not failed:
// their probe made it there and back.
func (r *Report) FailedNodes() []string {
	local, ok := r.ClusterState.LocalNode()
	if !ok {
		return []string{}
	}
	return local.Connectivity.FailedNodes()
}
