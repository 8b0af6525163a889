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

import "github.com/facebook/vigil/detector/protocol"

// HeartbeatCounter is the local monotone counter stamped into every emitted
// NodeState. Shared between the poller and the collector on the same
// goroutine, so no synchronization.
type HeartbeatCounter struct {
	counter int64
}

// Next increments the counter and returns a heartbeat at the given epoch
func (h *HeartbeatCounter) Next(epoch int64) protocol.HeartbeatTimestamp {
	h.counter++
	return protocol.HeartbeatTimestamp{Epoch: epoch, Counter: h.counter}
}

// Current returns the last issued counter value
func (h *HeartbeatCounter) Current() int64 {
	return h.counter
}
