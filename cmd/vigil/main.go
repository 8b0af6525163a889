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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/daemon"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	yaml "gopkg.in/yaml.v2"

	"github.com/facebook/vigil/detector"
	"github.com/facebook/vigil/detector/protocol"
	"github.com/facebook/vigil/detector/transport"
	"github.com/facebook/vigil/logqueue"

	_ "net/http/pprof"
)

type daemonConfig struct {
	LocalEndpoint   string          `yaml:"local_endpoint"`
	ListenAddress   string          `yaml:"listen_address"`
	Servers         []string        `yaml:"servers"`
	Epoch           int64           `yaml:"epoch"`
	MonitoringPort  int             `yaml:"monitoring_port"`
	Interval        time.Duration   `yaml:"interval"`
	SnapshotHistory int             `yaml:"snapshot_history"`
	Detector        detector.Config `yaml:"detector"`
}

func defaultDaemonConfig() *daemonConfig {
	return &daemonConfig{
		ListenAddress:   ":4984",
		MonitoringPort:  4985,
		Interval:        10 * time.Second,
		SnapshotHistory: 64,
		Detector:        *detector.DefaultConfig(),
	}
}

func prepareConfig(cfgPath string, servers []string, localEndpoint string, monitoringPort int, interval time.Duration) (*daemonConfig, error) {
	cfg := defaultDaemonConfig()
	warn := func(name string) {
		log.Warningf("overriding %s from CLI flag", name)
	}
	if cfgPath != "" {
		cData, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("reading config from %q: %w", cfgPath, err)
		}
		if err := yaml.Unmarshal(cData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config from %q: %w", cfgPath, err)
		}
	}
	if len(servers) > 0 {
		if len(cfg.Servers) > 0 {
			warn("servers")
		}
		cfg.Servers = servers
	}
	if localEndpoint != "" {
		if cfg.LocalEndpoint != "" {
			warn("local endpoint")
		}
		cfg.LocalEndpoint = localEndpoint
	}
	if monitoringPort != 0 {
		cfg.MonitoringPort = monitoringPort
	}
	if interval != 0 {
		cfg.Interval = interval
	}
	if cfg.LocalEndpoint == "" {
		return nil, fmt.Errorf("local endpoint must be set")
	}
	if len(cfg.Servers) == 0 {
		return nil, fmt.Errorf("at least one server must be configured")
	}
	if !contains(cfg.Servers, cfg.LocalEndpoint) {
		cfg.Servers = append(cfg.Servers, cfg.LocalEndpoint)
	}
	if err := cfg.Detector.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func run(cfg *daemonConfig) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := detector.NewStats()
	monitor := detector.NewMonitor(stats, cfg.MonitoringPort, 10*time.Second)

	// what we tell peers about ourselves until the first round completes
	currentState := atomic.Pointer[protocol.NodeState]{}
	notReady := protocol.NotReadyNodeState(cfg.LocalEndpoint)
	currentState.Store(&notReady)

	responder, err := transport.NewResponder(cfg.ListenAddress, func() protocol.NodeState {
		return *currentState.Load()
	}, func() int64 {
		return cfg.Epoch
	})
	if err != nil {
		return err
	}

	layout := detector.NewStaticLayout(cfg.Servers, cfg.Epoch)
	rt := transport.NewRuntime(cfg.Detector.InitPeriod)
	fd := detector.New(cfg.LocalEndpoint, &cfg.Detector, stats)
	snapshots := logqueue.NewQueue()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return monitor.Serve(ctx)
	})
	eg.Go(func() error {
		return responder.Serve(ctx)
	})
	eg.Go(func() error {
		metrics := protocol.SequencerMetrics{Status: protocol.SequencerReady}
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()
		for {
			report, err := fd.Poll(ctx, layout, rt, metrics)
			if err != nil {
				return err
			}
			log.Infof("round done: epoch=%d reachable=%v failed=%v wrongEpochs=%v ready=%v",
				report.PollEpoch, report.ReachableNodes(), report.FailedNodes(), report.WrongEpochs, report.ClusterState.IsReady())
			if local, ok := report.ClusterState.LocalNode(); ok {
				currentState.Store(&local)
			}
			if encoded, err := report.ClusterState.MarshalBinary(); err == nil {
				if _, err := snapshots.Enqueue(encoded); err != nil {
					log.Warningf("recording snapshot: %v", err)
				}
				snapshots.TrimFront(cfg.SnapshotHistory)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})

	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if !supported && err != nil {
		return err
	} else if !supported {
		log.Warning("sd_notify not supported")
	} else {
		log.Info("successfully sent sd_notify event")
	}

	return eg.Wait()
}

func main() {
	var (
		verboseFlag        bool
		cfgPathFlag        string
		localEndpointFlag  string
		monitoringPortFlag int
		intervalFlag       time.Duration
		serversFlag        string
	)
	flag.BoolVar(&verboseFlag, "verbose", false, "verbose output")
	flag.StringVar(&cfgPathFlag, "config", "", "path to the config file")
	flag.StringVar(&localEndpointFlag, "endpoint", "", "local endpoint, as peers see it (host:port)")
	flag.StringVar(&serversFlag, "servers", "", "comma-separated list of cluster endpoints")
	flag.IntVar(&monitoringPortFlag, "monitoringport", 0, "port to run monitoring server on")
	flag.DurationVar(&intervalFlag, "interval", 0, "how often to poll the cluster")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	var servers []string
	if serversFlag != "" {
		servers = strings.Split(serversFlag, ",")
	}
	cfg, err := prepareConfig(cfgPathFlag, servers, localEndpointFlag, monitoringPortFlag, intervalFlag)
	if err != nil {
		log.Fatal(err)
	}
	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
