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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/facebook/vigil/detector/protocol"
)

func TestReportReachableAndFailed(t *testing.T) {
	state := protocol.NewClusterState(local, map[string]protocol.NodeState{
		local: {
			Connectivity: protocol.Connected(local, map[string]protocol.ConnectionStatus{
				local: protocol.ConnectionOK,
				peerB: protocol.ConnectionOK,
				peerC: protocol.ConnectionFailed,
			}, 1),
		},
		peerB: *remoteState(peerB, 1, 1, fullRow()),
		peerC: protocol.UnavailableNodeState(peerC),
	})
	report := &Report{PollEpoch: 1, ClusterState: state}

	require.Equal(t, []string{local, peerB}, report.ReachableNodes())
	require.Equal(t, []string{peerC}, report.FailedNodes())
}

func TestReportWithoutLocalNode(t *testing.T) {
	report := &Report{ClusterState: protocol.NewClusterState(local, map[string]protocol.NodeState{})}
	require.Empty(t, report.FailedNodes())
	require.Empty(t, report.ReachableNodes())
}
