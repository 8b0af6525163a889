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

// Package stats holds the monitoring representation of the failure
// detector: per-peer rows and flat counters, plus exporters.
package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// Stat is one peer's row of the monitoring output
type Stat struct {
	Endpoint         string  `json:"endpoint"`
	Reachable        int     `json:"reachable"`
	WrongEpoch       int     `json:"wrong_epoch"`
	Epoch            int64   `json:"epoch"`
	HeartbeatCounter int64   `json:"heartbeat_counter"`
	Degree           int     `json:"degree"`
	RTTMeanNS        float64 `json:"rtt_mean_ns"`
	RTTStddevNS      float64 `json:"rtt_stddev_ns"`
	RTTVarianceNS    float64 `json:"rtt_variance_ns"`
}

// Stats is a list of Stat
type Stats []*Stat

// Sort orders the rows by endpoint
func (s Stats) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].Endpoint < s[j].Endpoint })
}

// Index returns the index of the row with e's endpoint, or -1
func (s Stats) Index(e *Stat) int {
	for i, a := range s {
		if a.Endpoint == e.Endpoint {
			return i
		}
	}
	return -1
}

// Counters is the flat counter map exported by the detector
type Counters map[string]int64

// FetchStats grabs per-peer stats from a running daemon's monitoring port
func FetchStats(url string) (Stats, error) {
	res, err := fetchJSON(fmt.Sprintf("%s/peers", url))
	if err != nil {
		return nil, err
	}
	s := Stats{}
	if err := json.Unmarshal(res, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// FetchCounters grabs counters from a running daemon's monitoring port
func FetchCounters(url string) (Counters, error) {
	res, err := fetchJSON(fmt.Sprintf("%s/counters", url))
	if err != nil {
		return nil, err
	}
	c := Counters{}
	if err := json.Unmarshal(res, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func fetchJSON(url string) ([]byte, error) {
	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
