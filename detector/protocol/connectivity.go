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
)

// NodeConnectivity is one node's row of the cluster connectivity graph:
// for every endpoint in the node's view (self included), did this node's
// probe to it succeed. Rows of type UNAVAILABLE or NOT_READY carry an empty
// matrix; only CONNECTED rows carry real entries.
type NodeConnectivity struct {
	Endpoint     string
	Type         ConnectivityType
	Connectivity map[string]ConnectionStatus
	Epoch        int64
}

// Connected builds a fresh observation with a full connectivity row
func Connected(endpoint string, matrix map[string]ConnectionStatus, epoch int64) NodeConnectivity {
	return NodeConnectivity{
		Endpoint:     endpoint,
		Type:         ConnectivityConnected,
		Connectivity: matrix,
		Epoch:        epoch,
	}
}

// Unavailable marks a node our probe couldn't reach
func Unavailable(endpoint string) NodeConnectivity {
	return NodeConnectivity{
		Endpoint:     endpoint,
		Type:         ConnectivityUnavailable,
		Connectivity: map[string]ConnectionStatus{},
	}
}

// NotReady marks a node that exists but has nothing to report yet
func NotReady(endpoint string) NodeConnectivity {
	return NodeConnectivity{
		Endpoint:     endpoint,
		Type:         ConnectivityNotReady,
		Connectivity: map[string]ConnectionStatus{},
	}
}

// ConnectedNodes returns the sorted endpoints this node currently reaches
func (nc NodeConnectivity) ConnectedNodes() []string {
	return nc.nodesWithStatus(ConnectionOK)
}

// FailedNodes returns the sorted endpoints this node currently fails to reach
func (nc NodeConnectivity) FailedNodes() []string {
	return nc.nodesWithStatus(ConnectionFailed)
}

func (nc NodeConnectivity) nodesWithStatus(status ConnectionStatus) []string {
	res := []string{}
	for peer, s := range nc.Connectivity {
		if s == status {
			res = append(res, peer)
		}
	}
	sort.Strings(res)
	return res
}

// ConnectionStatusOf reports this node's recorded status towards peer
func (nc NodeConnectivity) ConnectionStatusOf(peer string) (ConnectionStatus, error) {
	if nc.Type == ConnectivityUnavailable {
		return 0, fmt.Errorf("%w: node %s is unavailable, it has no connectivity to query", ErrInvalidConfiguration, nc.Endpoint)
	}
	status, ok := nc.Connectivity[peer]
	if !ok {
		return 0, fmt.Errorf("%w: %s not in the view of %s", ErrPeerNotFound, peer, nc.Endpoint)
	}
	return status, nil
}

// Degree is the number of OK entries in the row. Self counts: a connected
// node records OK towards itself by construction.
func (nc NodeConnectivity) Degree() int {
	degree := 0
	for _, s := range nc.Connectivity {
		if s == ConnectionOK {
			degree++
		}
	}
	return degree
}

func (nc NodeConnectivity) String() string {
	return fmt.Sprintf("%s[%s, epoch=%d, degree=%d]", nc.Endpoint, nc.Type, nc.Epoch, nc.Degree())
}
