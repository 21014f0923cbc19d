// Package netscan parses process/connection listing text (lsof -i -P -n
// style) into a deduplicated set of established TCP connections. It only
// ever reads text it is handed; it never inspects the system itself.
package netscan

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Connection identifies one established TCP connection by owning process
// and remote endpoint.
type Connection struct {
	Process string `json:"process"`
	Addr    string `json:"addr"`
	Port    uint16 `json:"port"`
}

var listingLine = regexp.MustCompile(
	`^(\S+)\s+\d+\s+\S+\s+\S+\s+IPv[46]\s+\S+\s+\S+\s+TCP\s+\S+->(\d+\.\d+\.\d+\.\d+):(\d+)\s+\(ESTABLISHED\)`)

// ParseListing returns the unique (process, remote address, remote port)
// triples for established-state lines, sorted for deterministic output.
// Lines that do not match the fixed-column layout are ignored.
func ParseListing(output string) []Connection {
	seen := make(map[Connection]struct{})
	for _, line := range strings.Split(output, "\n") {
		m := listingLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		port, err := strconv.ParseUint(m[3], 10, 16)
		if err != nil {
			port = 0
		}
		seen[Connection{Process: m[1], Addr: m[2], Port: uint16(port)}] = struct{}{}
	}

	conns := make([]Connection, 0, len(seen))
	for conn := range seen {
		conns = append(conns, conn)
	}
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Process != conns[j].Process {
			return conns[i].Process < conns[j].Process
		}
		if conns[i].Addr != conns[j].Addr {
			return conns[i].Addr < conns[j].Addr
		}
		return conns[i].Port < conns[j].Port
	})
	return conns
}
