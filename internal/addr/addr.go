// File: internal/addr/addr.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package addr parses and formats the msgbox address grammar:
//
//	(udp|tcp)://(*|<IPv4-literal>):<port>
//
// A bare "*" host means bind-to-any; otherwise the host must be a
// dotted-quad IPv4 literal 1-15 characters long. The port is a base-10
// integer that must consume the entire remainder of the string.
package addr

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Transport identifies the socket type an Address names.
type Transport int

const (
	UDP Transport = iota
	TCP
)

func (t Transport) String() string {
	switch t {
	case UDP:
		return "udp"
	case TCP:
		return "tcp"
	default:
		return fmt.Sprintf("transport(%d)", int(t))
	}
}

// Address is the parsed form of a msgbox address string.
type Address struct {
	Transport Transport
	// IP is the 4-byte network-order IPv4 address. BindAny is true when the
	// host was "*"; IP is then the zero address and should be treated as
	// INADDR_ANY by the caller.
	IP      net.IP
	Port    uint16
	BindAny bool
}

const maxHostLen = 15

// Parse parses address per the grammar above, with its own descriptive
// error message for each failure mode: unknown scheme, missing colon,
// empty/oversize host, unparseable dotted-quad, empty/non-numeric port
// tail.
func Parse(address string) (Address, error) {
	transport, rest, err := splitScheme(address)
	if err != nil {
		return Address{}, err
	}

	colon := strings.IndexByte(rest, ':')
	if colon < 0 {
		return Address{}, fmt.Errorf("addr: missing colon after host in %q", address)
	}
	hostStr, portStr := rest[:colon], rest[colon+1:]

	if len(hostStr) == 0 || len(hostStr) > maxHostLen {
		return Address{}, fmt.Errorf("addr: host length must be 1-%d characters, got %d in %q", maxHostLen, len(hostStr), address)
	}

	var ip net.IP
	bindAny := false
	if hostStr == "*" {
		bindAny = true
		ip = net.IPv4zero.To4()
	} else {
		ip = net.ParseIP(hostStr).To4()
		if ip == nil {
			return Address{}, fmt.Errorf("addr: couldn't parse IPv4 literal %q in %q", hostStr, address)
		}
	}

	if len(portStr) == 0 {
		return Address{}, fmt.Errorf("addr: empty port in %q", address)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Address{}, fmt.Errorf("addr: invalid port %q in %q", portStr, address)
	}

	return Address{Transport: transport, IP: ip, Port: uint16(port), BindAny: bindAny}, nil
}

func splitScheme(address string) (Transport, string, error) {
	const sep = "://"
	i := strings.Index(address, sep)
	if i < 0 {
		return 0, "", fmt.Errorf("addr: failing due to unrecognized prefix: %s", address)
	}
	switch address[:i] {
	case "udp":
		return UDP, address[i+len(sep):], nil
	case "tcp":
		return TCP, address[i+len(sep):], nil
	default:
		return 0, "", fmt.Errorf("addr: failing due to unrecognized prefix: %s", address)
	}
}

// String formats a back the address string. IP formatting is delegated to
// net.IP.String rather than a hand-rolled formatter.
func (a Address) String() string {
	host := "*"
	if !a.BindAny {
		host = a.IP.String()
	}
	return fmt.Sprintf("%s://%s:%d", a.Transport, host, a.Port)
}
