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

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/facebook/vigil/detector/stats"
)

var statusRawFlag bool

func printStatus(peers stats.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"endpoint", "state", "epoch", "heartbeat", "degree", "rtt mean", "rtt stddev"})
	for _, peer := range peers {
		state := color.RedString("FAILED")
		if peer.Reachable == 1 {
			state = color.GreenString("CONNECTED")
		} else if peer.WrongEpoch == 1 {
			state = color.YellowString("WRONG_EPOCH")
		}
		table.Append([]string{
			peer.Endpoint,
			state,
			fmt.Sprintf("%d", peer.Epoch),
			fmt.Sprintf("%d", peer.HeartbeatCounter),
			fmt.Sprintf("%d", peer.Degree),
			time.Duration(peer.RTTMeanNS).String(),
			time.Duration(peer.RTTStddevNS).String(),
		})
	}
	table.Render()
}

func init() {
	RootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusRawFlag, "raw", false, "dump raw stats instead of the table")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print per-peer reachability as seen by the daemon",
	Run: func(cmd *cobra.Command, args []string) {
		ConfigureVerbosity()

		peers, err := stats.FetchStats(rootServerFlag)
		if err != nil {
			log.Fatal(err)
		}
		if statusRawFlag {
			spew.Dump(peers)
			return
		}
		printStatus(peers)
	},
}
