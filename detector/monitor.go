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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// Monitor serves a Stats instance over HTTP: per-peer rows on /peers,
// flat counters on /counters. vigilcheck and the prometheus exporter are
// the consumers. While serving it also keeps the system stats fresh.
type Monitor struct {
	stats   *Stats
	port    int
	refresh time.Duration
}

// NewMonitor wraps stats for serving on the given port
func NewMonitor(stats *Stats, port int, refresh time.Duration) *Monitor {
	return &Monitor{stats: stats, port: port, refresh: refresh}
}

// Handler builds the monitoring routes. Split out from Serve so tests can
// drive it through httptest without binding the real port.
func (m *Monitor) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/peers", func(w http.ResponseWriter, _ *http.Request) {
		m.reply(w, m.stats.GetPeerStats())
	})
	mux.HandleFunc("/counters", func(w http.ResponseWriter, _ *http.Request) {
		m.reply(w, m.stats.GetCounters())
	})
	return mux
}

func (m *Monitor) reply(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("writing monitoring reply: %v", err)
	}
}

// Serve runs the monitoring server until the context is cancelled
func (m *Monitor) Serve(ctx context.Context) error {
	server := &http.Server{Addr: fmt.Sprintf(":%d", m.port), Handler: m.Handler()}

	go func() {
		ticker := time.NewTicker(m.refresh)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				server.Close()
				return
			case <-ticker.C:
				if err := m.stats.CollectSysStats(); err != nil {
					log.Warningf("refreshing system stats: %v", err)
				}
			}
		}
	}()

	log.Infof("monitoring server on %s", server.Addr)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
