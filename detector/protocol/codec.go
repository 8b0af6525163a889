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
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
)

// Wire format rules:
// integers are big-endian fixed width; strings are i32 length + UTF-8 bytes,
// length -1 meaning absent; enums travel as their name; maps are i32 entry
// count + concatenated entries in the encoder's iteration order (we sort keys
// so encoding is deterministic, decoders accept any order); lists are i32
// element count + elements.

const absentString = int32(-1)

func writeInt32(buf *bytes.Buffer, v int32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	buf.Write(b)
}

func writeInt64(buf *bytes.Buffer, v int64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeInt32(buf, int32(len(s)))
	buf.WriteString(s)
}

func readInt32(r *bytes.Reader) (int32, error) {
	b := make([]byte, 4)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, fmt.Errorf("%w: reading i32: %w", ErrCodec, err)
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func readInt64(r *bytes.Reader) (int64, error) {
	b := make([]byte, 8)
	if _, err := io.ReadFull(r, b); err != nil {
		return 0, fmt.Errorf("%w: reading i64: %w", ErrCodec, err)
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	if n == absentString {
		return "", nil
	}
	if n < 0 || int64(n) > int64(r.Len()) {
		return "", fmt.Errorf("%w: string of length %d in %d remaining bytes", ErrCodec, n, r.Len())
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: reading string body: %w", ErrCodec, err)
	}
	return string(b), nil
}

func readMapLen(r *bytes.Reader) (int, error) {
	n, err := readInt32(r)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative map size %d", ErrCodec, n)
	}
	return int(n), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func marshalNodeConnectivityTo(buf *bytes.Buffer, nc NodeConnectivity) {
	writeString(buf, nc.Endpoint)
	writeString(buf, nc.Type.String())
	writeInt32(buf, int32(len(nc.Connectivity)))
	for _, peer := range sortedKeys(nc.Connectivity) {
		writeString(buf, peer)
		writeString(buf, nc.Connectivity[peer].String())
	}
	writeInt64(buf, nc.Epoch)
}

func unmarshalNodeConnectivity(r *bytes.Reader) (NodeConnectivity, error) {
	nc := NodeConnectivity{}
	var err error
	if nc.Endpoint, err = readString(r); err != nil {
		return nc, err
	}
	typeName, err := readString(r)
	if err != nil {
		return nc, err
	}
	if nc.Type, err = ConnectivityTypeFromString(typeName); err != nil {
		return nc, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	n, err := readMapLen(r)
	if err != nil {
		return nc, err
	}
	nc.Connectivity = make(map[string]ConnectionStatus, n)
	for i := 0; i < n; i++ {
		peer, err := readString(r)
		if err != nil {
			return nc, err
		}
		statusName, err := readString(r)
		if err != nil {
			return nc, err
		}
		status, err := ConnectionStatusFromString(statusName)
		if err != nil {
			return nc, fmt.Errorf("%w: %w", ErrCodec, err)
		}
		nc.Connectivity[peer] = status
	}
	if nc.Epoch, err = readInt64(r); err != nil {
		return nc, err
	}
	return nc, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (nc NodeConnectivity) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	marshalNodeConnectivityTo(buf, nc)
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (nc *NodeConnectivity) UnmarshalBinary(b []byte) error {
	decoded, err := unmarshalNodeConnectivity(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*nc = decoded
	return nil
}

func marshalNodeStateTo(buf *bytes.Buffer, ns NodeState) {
	marshalNodeConnectivityTo(buf, ns.Connectivity)
	writeString(buf, ns.Sequencer.Status.String())
	writeInt64(buf, ns.Heartbeat.Epoch)
	writeInt64(buf, ns.Heartbeat.Counter)
}

func unmarshalNodeState(r *bytes.Reader) (NodeState, error) {
	ns := NodeState{}
	var err error
	if ns.Connectivity, err = unmarshalNodeConnectivity(r); err != nil {
		return ns, err
	}
	statusName, err := readString(r)
	if err != nil {
		return ns, err
	}
	if ns.Sequencer.Status, err = SequencerStatusFromString(statusName); err != nil {
		return ns, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	if ns.Heartbeat.Epoch, err = readInt64(r); err != nil {
		return ns, err
	}
	if ns.Heartbeat.Counter, err = readInt64(r); err != nil {
		return ns, err
	}
	return ns, nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (ns NodeState) MarshalBinary() ([]byte, error) {
	buf := &bytes.Buffer{}
	marshalNodeStateTo(buf, ns)
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (ns *NodeState) UnmarshalBinary(b []byte) error {
	decoded, err := unmarshalNodeState(bytes.NewReader(b))
	if err != nil {
		return err
	}
	*ns = decoded
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler
func (cs ClusterState) MarshalBinary() ([]byte, error) {
	if len(cs.Nodes) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: cluster of %d nodes doesn't fit the wire", ErrCodec, len(cs.Nodes))
	}
	buf := &bytes.Buffer{}
	writeInt32(buf, int32(len(cs.Nodes)))
	for _, endpoint := range sortedKeys(cs.Nodes) {
		writeString(buf, endpoint)
		marshalNodeStateTo(buf, cs.Nodes[endpoint])
	}
	writeString(buf, cs.LocalEndpoint)
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (cs *ClusterState) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)
	n, err := readMapLen(r)
	if err != nil {
		return err
	}
	nodes := make(map[string]NodeState, n)
	for i := 0; i < n; i++ {
		endpoint, err := readString(r)
		if err != nil {
			return err
		}
		node, err := unmarshalNodeState(r)
		if err != nil {
			return err
		}
		nodes[endpoint] = node
	}
	local, err := readString(r)
	if err != nil {
		return err
	}
	cs.Nodes = nodes
	cs.LocalEndpoint = local
	return nil
}
