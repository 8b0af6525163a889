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
	"testing"

	"github.com/stretchr/testify/require"
)

func connectedAt(endpoint string, epoch int64) NodeState {
	return NodeState{
		Connectivity: Connected(endpoint, map[string]ConnectionStatus{endpoint: ConnectionOK}, epoch),
		Sequencer:    SequencerMetrics{Status: SequencerReady},
		Heartbeat:    HeartbeatTimestamp{Epoch: epoch, Counter: 1},
	}
}

func TestIsReady(t *testing.T) {
	tests := []struct {
		name  string
		state ClusterState
		ready bool
	}{
		{
			name:  "empty is not ready",
			state: NewClusterState("a:9000", map[string]NodeState{}),
			ready: false,
		},
		{
			name: "same epoch everywhere",
			state: NewClusterState("a:9000", map[string]NodeState{
				"a:9000": connectedAt("a:9000", 3),
				"b:9000": connectedAt("b:9000", 3),
			}),
			ready: true,
		},
		{
			name: "mixed epochs",
			state: NewClusterState("a:9000", map[string]NodeState{
				"a:9000": connectedAt("a:9000", 3),
				"b:9000": connectedAt("b:9000", 4),
			}),
			ready: false,
		},
		{
			name: "not ready member",
			state: NewClusterState("a:9000", map[string]NodeState{
				"a:9000": connectedAt("a:9000", 3),
				"b:9000": NotReadyNodeState("b:9000"),
			}),
			ready: false,
		},
		{
			name: "unavailable member with different epoch",
			state: NewClusterState("a:9000", map[string]NodeState{
				"a:9000": connectedAt("a:9000", 3),
				"b:9000": UnavailableNodeState("b:9000"),
			}),
			ready: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.ready, tt.state.IsReady())
		})
	}
}

func TestLocalNode(t *testing.T) {
	state := NewClusterState("a:9000", map[string]NodeState{
		"a:9000": connectedAt("a:9000", 3),
	})
	local, ok := state.LocalNode()
	require.True(t, ok)
	require.Equal(t, "a:9000", local.Connectivity.Endpoint)

	empty := NewClusterState("z:9000", map[string]NodeState{})
	_, ok = empty.LocalNode()
	require.False(t, ok)
}

func TestEndpointsSorted(t *testing.T) {
	state := NewClusterState("c:9000", map[string]NodeState{
		"c:9000": connectedAt("c:9000", 1),
		"a:9000": connectedAt("a:9000", 1),
		"b:9000": connectedAt("b:9000", 1),
	})
	require.Equal(t, []string{"a:9000", "b:9000", "c:9000"}, state.Endpoints())
}
