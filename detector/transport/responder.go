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

package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/facebook/vigil/detector/protocol"
)

// connDeadline bounds one request/response exchange on the server side
const connDeadline = 10 * time.Second

// StateProvider returns the local node's current NodeState
type StateProvider func() protocol.NodeState

// EpochProvider returns the epoch this node currently lives at
type EpochProvider func() int64

// Responder answers node state requests from peers
type Responder struct {
	listener net.Listener
	state    StateProvider
	epoch    EpochProvider
}

// NewResponder starts listening on listenAddr
func NewResponder(listenAddr string, state StateProvider, epoch EpochProvider) (*Responder, error) {
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", listenAddr, err)
	}
	return &Responder{listener: listener, state: state, epoch: epoch}, nil
}

// Addr returns the bound listen address
func (r *Responder) Addr() net.Addr {
	return r.listener.Addr()
}

// Serve accepts and answers peers until the context is cancelled
func (r *Responder) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		r.listener.Close()
	}()
	log.Infof("Responder listening on %s", r.listener.Addr())
	for {
		conn, err := r.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Errorf("accept: %v", err)
			continue
		}
		go r.handleConn(conn)
	}
}

func (r *Responder) handleConn(conn net.Conn) {
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(connDeadline)); err != nil {
		return
	}
	req := make([]byte, 9)
	if _, err := io.ReadFull(conn, req); err != nil {
		log.Debugf("short request from %s: %v", conn.RemoteAddr(), err)
		return
	}
	if req[0] != msgNodeStateRequest {
		log.Debugf("unsupported message %d from %s", req[0], conn.RemoteAddr())
		return
	}
	reqEpoch := int64(binary.BigEndian.Uint64(req[1:]))
	localEpoch := r.epoch()
	if reqEpoch != localEpoch {
		resp := make([]byte, 9)
		resp[0] = respWrongEpoch
		binary.BigEndian.PutUint64(resp[1:], uint64(localEpoch))
		if _, err := conn.Write(resp); err != nil {
			log.Debugf("writing wrong epoch to %s: %v", conn.RemoteAddr(), err)
		}
		return
	}
	payload, err := r.state().MarshalBinary()
	if err != nil {
		log.Errorf("encoding node state: %v", err)
		return
	}
	resp := make([]byte, 5, 5+len(payload))
	resp[0] = respOK
	binary.BigEndian.PutUint32(resp[1:], uint32(len(payload)))
	resp = append(resp, payload...)
	if _, err := conn.Write(resp); err != nil {
		log.Debugf("writing node state to %s: %v", conn.RemoteAddr(), err)
	}
}
