/*
Package server implements msgpack IPC for string grouping.

Clients write a stream of msgpack-encoded Request values to the server's input
and read one Response per request from its output, in order. Before the first
request the server emits a ready message:

	{"id": "", "status": "ready"}

Each request names an operation and carries the fields that operation needs:

	{"id": "r1", "op": "add", "k": "ANZ ATM WILLUNGA 10 HIGH ST", "v": <any>}
	{"id": "r2", "op": "find", "k": "ANZ ATM WILLUNGA 12 HIGH ST"}
	{"id": "r3", "op": "ranked", "k": "ANZ ATM", "l": 5}
	{"id": "r4", "op": "items", "g": 0}

# Operations

  - add: place k in the best group or a new one. "g" forces a group, "new"
    forces a fresh group. "v" is stored verbatim and returned by items.
  - find: best acceptable group for k, without inserting.
  - exact: group k was previously assigned to, without scoring.
  - ranked: up to "l" groups ordered by score, each flagged acceptable or not.
  - groups: every group with its key, size and threshold.
  - items: the items of group "g".
  - stats: engine counters.

Responses echo the id and report the time taken in microseconds. Failures
carry "e" and "c" instead: 400 for malformed or invalid requests, 507 when
the engine is at capacity.
*/
package server

import "github.com/vmihailenco/msgpack/v5"

// Operation names.
const (
	OpAdd    = "add"
	OpFind   = "find"
	OpExact  = "exact"
	OpRanked = "ranked"
	OpGroups = "groups"
	OpItems  = "items"
	OpStats  = "stats"
)

// Request is a single client message.
type Request struct {
	ID      string             `msgpack:"id"`
	Op      string             `msgpack:"op"`
	Key     string             `msgpack:"k,omitempty"`
	Payload msgpack.RawMessage `msgpack:"v,omitempty"`
	Group   *int               `msgpack:"g,omitempty"`
	New     bool               `msgpack:"new,omitempty"`
	Limit   int                `msgpack:"l,omitempty"`
}

// GroupInfo describes one group.
type GroupInfo struct {
	Index     int     `msgpack:"g"`
	Key       string  `msgpack:"k"`
	Size      int     `msgpack:"n"`
	Threshold float64 `msgpack:"th"`
}

// RankedGroup is one entry of a ranked response. Score is relative to the
// group's acceptance bound.
type RankedGroup struct {
	Index      int     `msgpack:"g"`
	Key        string  `msgpack:"k"`
	Score      float64 `msgpack:"s"`
	Acceptable bool    `msgpack:"a"`
}

// ItemInfo is one stored item.
type ItemInfo struct {
	Key     string             `msgpack:"k"`
	Payload msgpack.RawMessage `msgpack:"v,omitempty"`
}

// Response is the reply to every request. Only the fields relevant to the
// operation are set; Error and Code are set on failure.
type Response struct {
	ID        string         `msgpack:"id"`
	Status    string         `msgpack:"status,omitempty"`
	Error     string         `msgpack:"e,omitempty"`
	Code      int            `msgpack:"c,omitempty"`
	Found     bool           `msgpack:"f,omitempty"`
	Outcome   string         `msgpack:"o,omitempty"`
	Group     *GroupInfo     `msgpack:"gr,omitempty"`
	Ranked    []RankedGroup  `msgpack:"r,omitempty"`
	Groups    []GroupInfo    `msgpack:"gs,omitempty"`
	Items     []ItemInfo     `msgpack:"i,omitempty"`
	Stats     map[string]int `msgpack:"st,omitempty"`
	Count     int            `msgpack:"n,omitempty"`
	TimeTaken int64          `msgpack:"t,omitempty"`
}

// ErrorResponse is the minimal failure reply. It encodes to the same keys as
// the error fields of Response.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Error codes.
const (
	CodeBadRequest   = 400
	CodeInternal     = 500
	CodeInsufficient = 507
)
