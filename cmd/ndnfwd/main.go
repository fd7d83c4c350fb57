/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package main

import (
	"os"

	"github.com/named-data/ndnfwd/cmd"
	"github.com/named-data/ndnfwd/executor"
)

func main() {
	// create a command tree
	tree := cmd.CmdTree{
		Name: "ndnfwd",
		Help: "NDN Forwarding Engine",
		Sub: []*cmd.CmdTree{{
			Name: "run",
			Help: "Start the forwarder with the given configuration file",
			Fun:  executor.Main,
		}, {
			Name: "replay",
			Help: "Run an event script from stdin against the forwarder",
			Fun:  executor.Replay,
		}},
	}

	// Parse the command line arguments
	args := os.Args
	args[0] = tree.Name
	tree.Execute(args)
}
