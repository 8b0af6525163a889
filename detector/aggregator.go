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
	"github.com/facebook/vigil/detector/protocol"
)

// AggregateClusterState fuses a window of per-iteration observations
// (oldest first) into the best available view of each endpoint.
//
// Per endpoint, the latest CONNECTED observation wins outright; failing
// that, the latest NOT_READY; failing that, the latest UNAVAILABLE. The
// asymmetry is deliberate: a CONNECTED observation carries real
// information, while a newer UNAVAILABLE only means one probe was lost.
// Transient probe failures must not erase the fact that the node was
// recently alive to someone.
//
// Epochs are not harmonized here; an inconsistent window simply yields a
// state whose IsReady() is false.
func AggregateClusterState(localEndpoint string, window []protocol.ClusterState) protocol.ClusterState {
	nodes := map[string]protocol.NodeState{}
	for _, state := range window {
		for endpoint, observation := range state.Nodes {
			current, seen := nodes[endpoint]
			if !seen {
				nodes[endpoint] = observation
				continue
			}
			if rank(observation.Connectivity.Type) >= rank(current.Connectivity.Type) {
				nodes[endpoint] = observation
			}
		}
	}
	return protocol.NewClusterState(localEndpoint, nodes)
}

// rank orders connectivity types by how much we trust the observation
func rank(t protocol.ConnectivityType) int {
	switch t {
	case protocol.ConnectivityConnected:
		return 2
	case protocol.ConnectivityNotReady:
		return 1
	default:
		return 0
	}
}
