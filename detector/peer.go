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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebook/vigil/detector/protocol"
)

// probe errors. Decode failures on the wire are reported as ErrTransport:
// a peer that sends us garbage is as good as unreachable.
var (
	// ErrProbeTimeout means the probe exceeded its per-client timeout
	ErrProbeTimeout = errors.New("probe timed out")
	// ErrTransport means the probe failed on the socket level
	ErrTransport = errors.New("transport error")
)

// WrongEpochError means the peer responded, but lives at a different epoch.
// Such a peer is reachable, just stale or ahead.
type WrongEpochError struct {
	ServerEpoch int64
}

func (e *WrongEpochError) Error() string {
	return fmt.Sprintf("wrong epoch: server is at %d", e.ServerEpoch)
}

// PeerClient talks to a single peer. Implementations must make sure a
// request abandoned by its caller never mutates shared state later.
type PeerClient interface {
	// NodeState asks the peer for its current NodeState at the given epoch
	NodeState(ctx context.Context, epoch int64) (*protocol.NodeState, error)
	// SetTimeout changes the per-request response timeout. Called only from
	// the poller's goroutine.
	SetTimeout(timeout time.Duration)
}

// Layout is the cluster membership at some epoch
type Layout interface {
	AllServers() []string
	ActiveLayoutServers() []string
	Epoch() int64
}

// Runtime hands out a client per endpoint
type Runtime interface {
	Router(endpoint string) (PeerClient, error)
}

// StaticLayout is a fixed membership list, used by the daemon and in tests
type StaticLayout struct {
	Servers      []string
	ActiveEpoch  int64
	ActiveSubset []string
}

// NewStaticLayout builds a layout where every server is active
func NewStaticLayout(servers []string, epoch int64) *StaticLayout {
	return &StaticLayout{Servers: servers, ActiveEpoch: epoch, ActiveSubset: servers}
}

// AllServers implements Layout
func (l *StaticLayout) AllServers() []string {
	return append([]string{}, l.Servers...)
}

// ActiveLayoutServers implements Layout
func (l *StaticLayout) ActiveLayoutServers() []string {
	return append([]string{}, l.ActiveSubset...)
}

// Epoch implements Layout
func (l *StaticLayout) Epoch() int64 {
	return l.ActiveEpoch
}
