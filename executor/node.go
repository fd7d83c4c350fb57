/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/fw"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/ndn/ndnlayer"
)

// Node is a forwarding thread together with the faces it transmits on.
type Node struct {
	config   *NodeConfig
	topology *Topology
	faces    *FaceTable
	thread   *fw.Thread
	profiler *Profiler
}

// NewNode loads the configuration file (if any), initializes logging, and creates the node.
// The node does not process packets until Start is called.
func NewNode(config *NodeConfig, sink Sink) (*Node, error) {
	core.Version = config.Version
	core.StartTimestamp = time.Now()

	if config.ConfigFileName != "" {
		if err := core.LoadConfig(config.ConfigFileName); err != nil {
			return nil, err
		}
	}
	if err := core.InitializeLogger(config.LogFile); err != nil {
		return nil, err
	}

	topology, err := TopologyFromConfig()
	if err != nil {
		return nil, err
	}

	n := &Node{
		config:   config,
		topology: topology,
		faces:    NewFaceTable(sink),
		profiler: NewProfiler(config),
	}
	n.thread = fw.NewThread(0, fw.OptionsFromConfig(), n.faces)
	return n, nil
}

// Start runs the forwarding thread and installs the configured faces, routes, and strategies.
func (n *Node) Start() error {
	core.LogInfo("Main", "Starting forwarder ", core.Version)
	if err := n.profiler.Start(); err != nil {
		return err
	}

	for _, face := range n.topology.Faces {
		n.faces.Add(face.ID, face.Available)
	}
	go n.thread.Run()

	n.thread.Do(func(engine *fw.Engine) {
		for _, route := range n.topology.Routes {
			if !n.faces.Available(route.Face) {
				core.LogWarn("Main", "Route ", route.Prefix, " uses face ", route.Face, " which is not up")
			}
			engine.Fib().Install(route.Prefix, route.Face, route.Rank)
		}
		for _, choice := range n.topology.Strategies {
			engine.Fib().SetStrategy(choice.Prefix, choice.Strategy)
		}
	})
	core.LogInfo("Main", "Installed ", len(n.topology.Routes), " routes on ", len(n.topology.Faces), " faces")
	return nil
}

// Stop stops the forwarding thread and writes any requested profiles.
func (n *Node) Stop() {
	core.LogInfo("Main", "Stopping forwarder")
	n.thread.TellToQuit()
	<-n.thread.HasQuit
	n.profiler.Stop()
	core.ShutdownLogger()
}

// Faces returns the face table.
func (n *Node) Faces() *FaceTable {
	return n.faces
}

// Thread returns the forwarding thread.
func (n *Node) Thread() *fw.Thread {
	return n.thread
}

func (n *Node) accept(face ndn.FaceID, packet *ndn.Packet) bool {
	if !n.faces.Available(face) {
		core.LogDebug("Main", "Dropping ", packet, " received on unavailable face ", face)
		return false
	}
	return true
}

// Receive queues a packet that arrived on face.
// Packets from unknown or down faces are dropped.
func (n *Node) Receive(face ndn.FaceID, packet *ndn.Packet) {
	if n.accept(face, packet) {
		n.thread.QueuePacket(packet, face)
	}
}

// Deliver processes a packet that arrived on face and waits until the engine is done with it.
// Packets from unknown or down faces are dropped, and false is returned.
func (n *Node) Deliver(face ndn.FaceID, packet *ndn.Packet) bool {
	if !n.accept(face, packet) {
		return false
	}
	n.thread.Deliver(packet, face)
	return true
}

// ReceiveWire decodes wire and queues the packet it carries.
func (n *Node) ReceiveWire(face ndn.FaceID, wire []byte) error {
	packet, err := ndnlayer.Parse(wire)
	if err != nil {
		return err
	}
	n.Receive(face, packet)
	return nil
}
