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

// Package transport is a TCP implementation of the detector's PeerClient
// contract: one short-lived connection per probe, length-prefixed frames,
// NodeState payloads in the detector wire format.
package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/vigil/detector"
	"github.com/facebook/vigil/detector/protocol"
)

// wire envelope
const (
	msgNodeStateRequest uint8 = 1

	respOK         uint8 = 0
	respWrongEpoch uint8 = 1
)

// maxFrame bounds the NodeState payload a peer may send us
const maxFrame = 1 << 20

// Client talks to one peer. Safe to reuse across rounds; SetTimeout is
// only ever called from the poller's goroutine.
type Client struct {
	endpoint string
	timeout  atomic.Int64
}

// NewClient creates a client for one peer endpoint
func NewClient(endpoint string, timeout time.Duration) *Client {
	c := &Client{endpoint: endpoint}
	c.timeout.Store(int64(timeout))
	return c
}

// SetTimeout implements detector.PeerClient
func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout.Store(int64(timeout))
}

func (c *Client) logTx(msg string, v ...interface{}) {
	log.Debugf(color.GreenString("[%s] client -> %s", c.endpoint, fmt.Sprintf(msg, v...)))
}

func (c *Client) logRx(msg string, v ...interface{}) {
	log.Debugf(color.BlueString("[%s] server -> %s", c.endpoint, fmt.Sprintf(msg, v...)))
}

// NodeState implements detector.PeerClient. Timeouts come back as the
// detector's probe timeout, everything else on the socket as a transport
// error, and a peer at another epoch as WrongEpochError.
func (c *Client) NodeState(ctx context.Context, epoch int64) (*protocol.NodeState, error) {
	timeout := time.Duration(c.timeout.Load())
	deadline := time.Now().Add(timeout)

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.endpoint)
	if err != nil {
		return nil, classify(err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: %v", detector.ErrTransport, err)
	}

	req := make([]byte, 9)
	req[0] = msgNodeStateRequest
	binary.BigEndian.PutUint64(req[1:], uint64(epoch))
	if _, err := conn.Write(req); err != nil {
		return nil, classify(err)
	}
	c.logTx("node state request, epoch=%d", epoch)

	header := make([]byte, 1)
	if _, err := io.ReadFull(conn, header); err != nil {
		return nil, classify(err)
	}
	switch header[0] {
	case respWrongEpoch:
		var serverEpoch int64
		if err := binary.Read(conn, binary.BigEndian, &serverEpoch); err != nil {
			return nil, classify(err)
		}
		c.logRx("wrong epoch, server at %d", serverEpoch)
		return nil, &detector.WrongEpochError{ServerEpoch: serverEpoch}
	case respOK:
		var size int32
		if err := binary.Read(conn, binary.BigEndian, &size); err != nil {
			return nil, classify(err)
		}
		if size < 0 || size > maxFrame {
			return nil, fmt.Errorf("%w: bad frame size %d", detector.ErrTransport, size)
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return nil, classify(err)
		}
		state := &protocol.NodeState{}
		if err := state.UnmarshalBinary(payload); err != nil {
			// garbage on the wire is as good as no peer
			return nil, fmt.Errorf("%w: %v", detector.ErrTransport, err)
		}
		c.logRx("node state, type=%s epoch=%d", state.Connectivity.Type, state.Connectivity.Epoch)
		return state, nil
	default:
		return nil, fmt.Errorf("%w: unknown response status %d", detector.ErrTransport, header[0])
	}
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", detector.ErrProbeTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", detector.ErrProbeTimeout, err)
	}
	return fmt.Errorf("%w: %v", detector.ErrTransport, err)
}

// Runtime hands out cached clients per endpoint
type Runtime struct {
	mu      sync.Mutex
	timeout time.Duration
	clients map[string]*Client
}

// NewRuntime creates a Runtime whose new clients start at the given timeout
func NewRuntime(timeout time.Duration) *Runtime {
	return &Runtime{
		timeout: timeout,
		clients: map[string]*Client{},
	}
}

// Router implements detector.Runtime
func (r *Runtime) Router(endpoint string) (detector.PeerClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("empty endpoint")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.clients[endpoint]
	if !ok {
		client = NewClient(endpoint, r.timeout)
		r.clients[endpoint] = client
	}
	return client, nil
}
