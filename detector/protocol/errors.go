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

import "errors"

// codec and model errors
var (
	// ErrCodec is the base class of all decode failures
	ErrCodec = errors.New("codec error")
	// ErrUnknownEnum means the wire carried an enum name we don't recognize.
	// Decoders must reject these rather than map to a default: peers of
	// different versions share this format.
	ErrUnknownEnum = errors.New("unknown enum name")
	// ErrInvalidConfiguration is a programmer error, e.g. querying the
	// connection status of a node we never reached
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrPeerNotFound means the queried peer is not part of this node's view
	ErrPeerNotFound = errors.New("peer not found")
)
