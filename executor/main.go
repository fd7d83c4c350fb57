/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/named-data/ndnfwd/core"
)

var Version string

func parseFlags(name string, args []string) (*NodeConfig, bool) {
	config := &NodeConfig{Version: Version}

	flagset := flag.NewFlagSet(name, flag.ExitOnError)
	flagset.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [config-file]\n", args[0])
		flagset.PrintDefaults()
	}

	var printVersion bool
	flagset.BoolVar(&printVersion, "version", false, "Print version and exit")
	flagset.StringVar(&config.LogFile, "log-file", "", "Write logs to the specified file instead of stdout")
	flagset.StringVar(&config.CpuProfile, "cpu-profile", "", "Enable CPU profiling (output to specified file)")
	flagset.StringVar(&config.MemProfile, "mem-profile", "", "Enable memory profiling (output to specified file)")
	flagset.StringVar(&config.BlockProfile, "block-profile", "", "Enable block profiling (output to specified file)")

	flagset.Parse(args[1:])

	if printVersion {
		fmt.Fprintln(os.Stderr, "ndnfwd: NDN forwarding engine")
		fmt.Fprintln(os.Stderr, "Version: ", Version)
		fmt.Fprintln(os.Stderr, "Released under the terms of the MIT License")
		return nil, false
	}

	config.ConfigFileName = flagset.Arg(0)
	return config, true
}

func startNode(config *NodeConfig) *Node {
	node, err := NewNode(config, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Unable to configure forwarder: "+err.Error())
		os.Exit(3)
	}
	if err = node.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "Unable to start forwarder: "+err.Error())
		os.Exit(3)
	}
	return node
}

// Main runs the forwarder until it is interrupted.
func Main(args []string) {
	config, ok := parseFlags("ndnfwd", args)
	if !ok {
		return
	}
	node := startNode(config)

	// set up signal handler channel and wait for interrupt
	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM)
	receivedSig := <-sigChannel
	core.LogInfo("Main", "Received signal ", receivedSig, " - exiting")

	node.Stop()
}

// Replay runs the forwarder on an event script read from stdin and exits at its end.
func Replay(args []string) {
	config, ok := parseFlags("ndnfwd-replay", args)
	if !ok {
		return
	}
	node := startNode(config)

	err := NewScript(node, os.Stdout).Run(os.Stdin)
	node.Stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Script failed: "+err.Error())
		os.Exit(1)
	}
}
