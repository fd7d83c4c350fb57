/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/executor"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[core]
log_level = "WARN"

[fw]
retry_timeout_ms = 60000

[[face]]
id = 1

[[face]]
id = 2
available = false

[[face]]
id = 9

[[fib.route]]
prefix = "/a"
face = 1
rank = 10

[[fib.route]]
prefix = "/a"
face = 2
rank = 5

[[fib.strategy]]
prefix = "/a"
strategy = "lowest-rtt"
`

type sent struct {
	face ndn.FaceID
	wire []byte
}

type recorder struct {
	mutex sync.Mutex
	sent  []sent
}

func (r *recorder) sink(face ndn.FaceID, packet *ndn.Packet, wire []byte) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sent = append(r.sent, sent{face, wire})
}

func (r *recorder) take() []sent {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := r.sent
	r.sent = nil
	return out
}

func startNode(t *testing.T, config string) (*executor.Node, *recorder) {
	t.Cleanup(core.ResetConfig)
	file := filepath.Join(t.TempDir(), "ndnfwd.toml")
	require.NoError(t, os.WriteFile(file, []byte(config), 0o644))

	rec := new(recorder)
	node, err := executor.NewNode(&executor.NodeConfig{ConfigFileName: file}, rec.sink)
	require.NoError(t, err)
	require.NoError(t, node.Start())
	t.Cleanup(node.Stop)
	return node, rec
}

func TestTopologyFromConfig(t *testing.T) {
	defer core.ResetConfig()
	require.NoError(t, core.LoadConfigString(testConfig))

	topo, err := executor.TopologyFromConfig()
	require.NoError(t, err)
	assert.Equal(t, []executor.FaceConfig{{ID: 1, Available: true}, {ID: 2, Available: false}, {ID: 9, Available: true}}, topo.Faces)
	require.Len(t, topo.Routes, 2)
	assert.Equal(t, "/a", topo.Routes[1].Prefix.String())
	assert.Equal(t, ndn.FaceID(2), topo.Routes[1].Face)
	assert.Equal(t, uint64(5), topo.Routes[1].Rank)
	require.Len(t, topo.Strategies, 1)
	assert.Equal(t, "lowest-rtt", topo.Strategies[0].Strategy)

	require.NoError(t, core.LoadConfigString(`
[[fib.strategy]]
prefix = "/a"
strategy = "flooding"
`))
	_, err = executor.TopologyFromConfig()
	assert.Error(t, err)

	require.NoError(t, core.LoadConfigString(`
[[fib.route]]
prefix = "/a"
`))
	_, err = executor.TopologyFromConfig()
	assert.Error(t, err)
}

func TestFaceTable(t *testing.T) {
	rec := new(recorder)
	faces := executor.NewFaceTable(rec.sink)
	faces.Add(1, true)

	assert.True(t, faces.Available(1))
	assert.False(t, faces.Available(2))
	assert.False(t, faces.SetAvailable(2, true))
	assert.True(t, faces.SetAvailable(1, false))
	assert.False(t, faces.Available(1))

	interest := &ndn.Interest{Name: ndn.MustParseName("/a"), Nonce: 1}
	faces.Transmit(1, &ndn.Packet{Interest: interest})
	faces.Transmit(2, &ndn.Packet{Interest: interest})
	out := rec.take()
	require.Len(t, out, 1)
	assert.Equal(t, interest.Encode(), out[0].wire)
	assert.Equal(t, uint64(1), faces.NOut(1))
	assert.Equal(t, uint64(0), faces.NOut(2))
}

func TestScript(t *testing.T) {
	node, rec := startNode(t, testConfig)

	var status bytes.Buffer
	script := executor.NewScript(node, &status)
	require.NoError(t, script.Run(strings.NewReader(`
# face 2 is down, so the Interest goes to face 1
interest 9 /a/x 7
data 1 /a/x hello 1000
interest 9 /a/x 8
status
`)))

	out := rec.take()
	require.Len(t, out, 3)
	assert.Equal(t, ndn.FaceID(1), out[0].face)
	assert.Equal(t, ndn.FaceID(9), out[1].face)
	assert.Equal(t, ndn.FaceID(9), out[2].face)
	packet, err := ndn.DecodePacket(out[2].wire)
	require.NoError(t, err)
	require.NotNil(t, packet.Data)
	assert.Equal(t, []byte("hello"), packet.Data.Payload)

	assert.Contains(t, status.String(), "pit=0 cs=1 fib=2\n")
	assert.Contains(t, status.String(), "cs-hits=1 satisfied=1 unsatisfied=0 probes=0\n")

	// Face 1 now has a measured RTT and is preferred over face 2 once it is up,
	// then a Nack from face 1 moves the Interest along
	require.NoError(t, script.Run(strings.NewReader(`
up 2
interest 9 /a/y 11
nack 1 congestion /a/y 11
`)))
	out = rec.take()
	require.Len(t, out, 2)
	assert.Equal(t, ndn.FaceID(1), out[0].face)
	assert.Equal(t, ndn.FaceID(2), out[1].face)
}

func TestScriptDropsPacketsFromDownFaces(t *testing.T) {
	node, rec := startNode(t, testConfig)

	var status bytes.Buffer
	script := executor.NewScript(node, &status)
	require.NoError(t, script.Run(strings.NewReader(`
down 9
interest 9 /a/x 7
status
`)))
	assert.Empty(t, rec.take())
	assert.Contains(t, status.String(), "pit=0 cs=0 fib=2\n")
	assert.Contains(t, status.String(), "in: interests=0 data=0 nacks=0\n")

	// Face 2 is down in the configuration, so its Data is not cached
	require.NoError(t, script.Run(strings.NewReader(`
up 9
interest 9 /a/x 7
data 2 /a/x hello 1000
data 1 /a/x hello 1000
`)))
	out := rec.take()
	require.Len(t, out, 2)
	assert.Equal(t, ndn.FaceID(1), out[0].face)
	assert.Equal(t, ndn.FaceID(9), out[1].face)
	assert.False(t, node.Deliver(2, &ndn.Packet{Data: &ndn.Data{Name: ndn.MustParseName("/a/z")}}))
	assert.True(t, node.Deliver(1, &ndn.Packet{Data: &ndn.Data{Name: ndn.MustParseName("/a/z")}}))
}

func TestScriptErrors(t *testing.T) {
	node, _ := startNode(t, testConfig)
	script := executor.NewScript(node, &bytes.Buffer{})

	for _, line := range []string{
		"bogus",
		"interest 9 /a/x",
		"interest x /a/x 1",
		"interest 9 a/x 1",
		"nack 1 sad /a/x 1",
		"down 42",
		"sleep soon",
	} {
		err := script.Run(strings.NewReader(line))
		if assert.Error(t, err, line) {
			assert.Contains(t, err.Error(), "line 1", line)
		}
	}
	assert.ErrorIs(t, script.Run(strings.NewReader("\n\nbogus")), executor.ErrBadCommand)
}

func TestReceiveWire(t *testing.T) {
	node, rec := startNode(t, testConfig)

	interest := &ndn.Interest{Name: ndn.MustParseName("/a/z"), Nonce: 3}
	require.NoError(t, node.ReceiveWire(9, interest.Encode()))
	assert.Eventually(t, func() bool {
		return node.Thread().GetNumPitEntries() == 1
	}, time.Second, time.Millisecond)
	require.Len(t, rec.take(), 1)

	assert.Error(t, node.ReceiveWire(9, []byte{0x42, 0x00}))
}

func TestSampleConfig(t *testing.T) {
	defer core.ResetConfig()
	require.NoError(t, core.LoadConfig("../ndnfwd.sample.toml"))

	topo, err := executor.TopologyFromConfig()
	require.NoError(t, err)
	assert.Len(t, topo.Faces, 3)
	assert.Len(t, topo.Routes, 2)
	assert.Len(t, topo.Strategies, 1)
}
