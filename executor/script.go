/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/fw"
	"github.com/named-data/ndnfwd/ndn"
)

// ErrBadCommand indicates a script line that could not be parsed.
var ErrBadCommand = errors.New("bad command")

// Script drives a node from a line-oriented event script:
//
//	interest <face> <name> <nonce> [lifetime_ms]
//	data <face> <name> <payload> [freshness_ms]
//	nack <face> <reason> <name> <nonce>
//	sleep <ms>
//	down <face>
//	up <face>
//	status
//
// Blank lines and lines starting with '#' are ignored.
type Script struct {
	node  *Node
	out   io.Writer
	sleep func(time.Duration)
}

// NewScript creates a script runner that prints status reports to out.
func NewScript(node *Node, out io.Writer) *Script {
	return &Script{
		node:  node,
		out:   out,
		sleep: time.Sleep,
	}
}

func (s *Script) String() string {
	return "Script"
}

// Run executes every line of input, stopping at the first malformed line.
func (s *Script) Run(input io.Reader) error {
	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.Exec(strings.Fields(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}
	}
	return scanner.Err()
}

// Exec executes one command.
func (s *Script) Exec(args []string) error {
	core.LogTrace(s, "Executing ", strings.Join(args, " "))
	switch args[0] {
	case "interest":
		if len(args) != 4 && len(args) != 5 {
			return badCommand(args, "interest <face> <name> <nonce> [lifetime_ms]")
		}
		face, name, err := faceAndName(args[1], args[2])
		if err != nil {
			return err
		}
		interest := &ndn.Interest{Name: name}
		if interest.Nonce, err = strconv.ParseUint(args[3], 10, 64); err != nil {
			return fmt.Errorf("nonce: %w", err)
		}
		if len(args) == 5 {
			if interest.Lifetime, err = parseMillis(args[4]); err != nil {
				return fmt.Errorf("lifetime: %w", err)
			}
		}
		s.deliver(face, &ndn.Packet{Interest: interest})
	case "data":
		if len(args) != 4 && len(args) != 5 {
			return badCommand(args, "data <face> <name> <payload> [freshness_ms]")
		}
		face, name, err := faceAndName(args[1], args[2])
		if err != nil {
			return err
		}
		data := &ndn.Data{Name: name, Payload: []byte(args[3])}
		if len(args) == 5 {
			if data.Freshness, err = parseMillis(args[4]); err != nil {
				return fmt.Errorf("freshness: %w", err)
			}
		}
		s.deliver(face, &ndn.Packet{Data: data})
	case "nack":
		if len(args) != 5 {
			return badCommand(args, "nack <face> <reason> <name> <nonce>")
		}
		face, name, err := faceAndName(args[1], args[3])
		if err != nil {
			return err
		}
		reason, err := parseNackReason(args[2])
		if err != nil {
			return err
		}
		nonce, err := strconv.ParseUint(args[4], 10, 64)
		if err != nil {
			return fmt.Errorf("nonce: %w", err)
		}
		nack := ndn.MakeNack(reason, ndn.Interest{Name: name, Nonce: nonce})
		s.deliver(face, &ndn.Packet{Nack: &nack})
	case "sleep":
		if len(args) != 2 {
			return badCommand(args, "sleep <ms>")
		}
		d, err := parseMillis(args[1])
		if err != nil {
			return err
		}
		s.sleep(d)
	case "down", "up":
		if len(args) != 2 {
			return badCommand(args, args[0]+" <face>")
		}
		face, err := parseFace(args[1])
		if err != nil {
			return err
		}
		if !s.node.Faces().SetAvailable(face, args[0] == "up") {
			return fmt.Errorf("%w: unknown face %d", ErrBadCommand, face)
		}
	case "status":
		s.printStatus()
	default:
		return fmt.Errorf("%w: unknown command %q", ErrBadCommand, args[0])
	}
	return nil
}

// deliver processes the packet synchronously, so that commands take effect in order.
func (s *Script) deliver(face ndn.FaceID, packet *ndn.Packet) {
	s.node.Deliver(face, packet)
}

func (s *Script) printStatus() {
	var counters fw.Counters
	var pitSize, csSize, fibSize int
	s.node.Thread().Do(func(engine *fw.Engine) {
		counters = engine.Counters()
		pitSize, csSize = engine.PitSize(), engine.CsSize()
		fibSize = engine.Fib().Size()
	})
	fmt.Fprintf(s.out, "pit=%d cs=%d fib=%d\n", pitSize, csSize, fibSize)
	fmt.Fprintf(s.out, "in: interests=%d data=%d nacks=%d\n",
		counters.NInInterests, counters.NInData, counters.NInNacks)
	fmt.Fprintf(s.out, "out: interests=%d data=%d nacks=%d\n",
		counters.NOutInterests, counters.NOutData, counters.NOutNacks)
	fmt.Fprintf(s.out, "cs-hits=%d satisfied=%d unsatisfied=%d probes=%d\n",
		counters.NCsHits, counters.NSatisfiedInterests, counters.NUnsatisfiedInterests, counters.NProbes)
}

func badCommand(args []string, usage string) error {
	return fmt.Errorf("%w: %q, usage: %s", ErrBadCommand, strings.Join(args, " "), usage)
}

func parseFace(arg string) (ndn.FaceID, error) {
	face, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("face: %w", err)
	}
	return ndn.FaceID(face), nil
}

func faceAndName(faceArg, nameArg string) (ndn.FaceID, ndn.Name, error) {
	face, err := parseFace(faceArg)
	if err != nil {
		return 0, ndn.Name{}, err
	}
	name, err := ndn.NameFromString(nameArg)
	if err != nil {
		return 0, ndn.Name{}, fmt.Errorf("name: %w", err)
	}
	return face, name, nil
}

func parseMillis(arg string) (time.Duration, error) {
	ms, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func parseNackReason(arg string) (ndn.NackReason, error) {
	switch strings.ToLower(arg) {
	case "congestion":
		return ndn.NackCongestion, nil
	case "duplicate":
		return ndn.NackDuplicate, nil
	case "nodata", "noroute":
		return ndn.NackNoData, nil
	}
	return 0, fmt.Errorf("%w: unknown nack reason %q", ErrBadCommand, arg)
}
