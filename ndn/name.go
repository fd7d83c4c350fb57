/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"encoding/hex"
	"strings"

	"github.com/cespare/xxhash"
	"github.com/named-data/ndnfwd/ndn/tlv"
)

// Component represents an opaque NDN name component.
type Component struct {
	value string
}

// NewComponent creates a name component holding a copy of the specified bytes.
func NewComponent(value []byte) Component {
	return Component{value: string(value)}
}

// Bytes returns a copy of the component value.
func (c Component) Bytes() []byte {
	return []byte(c.value)
}

// Len returns the length of the component value.
func (c Component) Len() int {
	return len(c.value)
}

// Equals returns whether the two name components match.
func (c Component) Equals(other Component) bool {
	return c.value == other.value
}

// Compare orders components by length and then by value.
func (c Component) Compare(other Component) int {
	if len(c.value) != len(other.value) {
		if len(c.value) < len(other.value) {
			return -1
		}
		return 1
	}
	return strings.Compare(c.value, other.value)
}

func (c Component) String() string {
	return escapeComponent(c.value)
}

// Name is an immutable, ordered sequence of name components.
// The zero value is the empty name "/".
type Name struct {
	components []Component
}

// NewName creates a name from the specified components.
func NewName(components ...Component) Name {
	n := Name{components: make([]Component, len(components))}
	copy(n.components, components)
	return n
}

// NameFromString decodes a name from its URI representation, e.g. "/a/b/c".
func NameFromString(str string) (Name, error) {
	if len(str) == 0 || str[0] != '/' {
		return Name{}, ErrBadName
	}

	n := Name{}
	for _, part := range strings.Split(str[1:], "/") {
		if part == "" {
			// Tolerate a trailing slash and "/" itself
			continue
		}
		value, err := unescapeComponent(part)
		if err != nil {
			return Name{}, err
		}
		n.components = append(n.components, Component{value: value})
	}
	return n, nil
}

// MustParseName is like NameFromString, but panics on malformed input.
func MustParseName(str string) Name {
	n, err := NameFromString(str)
	if err != nil {
		panic(err)
	}
	return n
}

// Size returns the number of components in the name.
func (n Name) Size() int {
	return len(n.components)
}

// At returns the name component at the specified index. Negative indices count from the end.
func (n Name) At(index int) Component {
	if index < 0 {
		index += len(n.components)
	}
	return n.components[index]
}

// Prefix returns a name consisting of the first size components.
func (n Name) Prefix(size int) Name {
	if size >= len(n.components) {
		return n
	}
	if size < 0 {
		size = 0
	}
	return Name{components: n.components[:size:size]}
}

// Append returns a new name with the specified components added to the end.
func (n Name) Append(components ...Component) Name {
	appended := make([]Component, 0, len(n.components)+len(components))
	appended = append(appended, n.components...)
	appended = append(appended, components...)
	return Name{components: appended}
}

// IsPrefixOf returns whether this name is a prefix of (or equal to) the other name.
func (n Name) IsPrefixOf(other Name) bool {
	if len(n.components) > len(other.components) {
		return false
	}
	for i, component := range n.components {
		if !component.Equals(other.components[i]) {
			return false
		}
	}
	return true
}

// Equals returns whether the two names match.
func (n Name) Equals(other Name) bool {
	return len(n.components) == len(other.components) && n.IsPrefixOf(other)
}

// Compare orders names in canonical order, where a prefix sorts before the names it covers.
func (n Name) Compare(other Name) int {
	for i := 0; i < len(n.components) && i < len(other.components); i++ {
		if c := n.components[i].Compare(other.components[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n.components) < len(other.components):
		return -1
	case len(n.components) > len(other.components):
		return 1
	}
	return 0
}

// Hash returns a 64-bit hash of the name. Distinct names may collide.
func (n Name) Hash() uint64 {
	digest := xxhash.New()
	for _, component := range n.components {
		digest.Write(tlv.EncodeVarNum(uint64(len(component.value))))
		digest.Write([]byte(component.value))
	}
	return digest.Sum64()
}

func (n Name) String() string {
	if len(n.components) == 0 {
		return "/"
	}

	var out strings.Builder
	for _, component := range n.components {
		out.WriteByte('/')
		out.WriteString(component.String())
	}
	return out.String()
}

func escapeComponent(in string) string {
	out := make([]byte, 0, 3*len(in)) // Capacity of 3 * len is worst case if every character has to be escaped
	nPeriods := 0
	for i := 0; i < len(in); i++ {
		b := in[i]
		switch {
		case b == '.':
			nPeriods++
			fallthrough
		case (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '~':
			out = append(out, b)
		default:
			out = append(out, '%', 0, 0)
			hex.Encode(out[len(out)-2:], []byte{b})
		}
	}
	if nPeriods == len(in) {
		out = append(out, '.', '.', '.')
	}
	return string(out)
}

func unescapeComponent(in string) (string, error) {
	// Components made only of periods carry three extra periods
	if strings.Trim(in, ".") == "" {
		if len(in) < 3 {
			return "", ErrBadName
		}
		return in[3:], nil
	}

	out := make([]byte, 0, len(in)) // Capacity is worst case if nothing to be unescaped
	for i := 0; i < len(in); i++ {
		if in[i] == '%' {
			if len(in) <= i+2 {
				return "", ErrBadEscape
			}
			unescaped, err := hex.DecodeString(in[i+1 : i+3])
			if err != nil {
				return "", ErrBadEscape
			}
			out = append(out, unescaped...)
			i += 2
		} else {
			out = append(out, in[i])
		}
	}
	return string(out), nil
}
