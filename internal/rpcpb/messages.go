// Package rpcpb is the wire-message and gRPC service layer for the Chord
// node, hand-authored in the shape protoc-gen-go/protoc-gen-go-grpc would
// emit from a .proto (message structs, a ServiceDesc per service, typed
// client stubs) — see DESIGN.md for why this is hand-written rather than
// compiler-generated.
package rpcpb

import "ChordDHT/internal/domain"

// Node is the wire form of domain.Node.
type Node struct {
	Id      []byte
	Address string
}

func NodeToProto(n *domain.Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{Id: []byte(n.ID), Address: n.Addr}
}

func NodeFromProto(n *Node) *domain.Node {
	if n == nil {
		return nil
	}
	return &domain.Node{ID: domain.ID(n.Id), Addr: n.Address}
}

// SuccessorList is the wire form of a successor-list snapshot.
type SuccessorList struct {
	Successors []*Node
}

// FindSuccessorRequest carries the ring position being looked up.
type FindSuccessorRequest struct {
	TargetId []byte
}

type FindSuccessorResponse struct {
	Node *Node
}

// ClosestPrecedingFingerRequest/Response implement the single-hop routing
// step of spec.md §4.3.
type ClosestPrecedingFingerRequest struct {
	TargetId []byte
}

type ClosestPrecedingFingerResponse struct {
	Node *Node
}

// NotifyRequest announces a candidate predecessor to the callee (spec.md
// §4.5.4). The RPC is server-streaming: the callee responds on the stream
// only after it decides whether to adopt the candidate, then streams the
// resources the caller now owns, from within the handler, before closing it. PowNonce/
// PowIssuedAt carry the proof-of-work token that gates this rate-limited
// RPC (spec.md §4.6) — notify, not health, is the call PoW protects, since
// it is the one a hostile peer could use to force repeated ownership
// recomputation on its victim.
type NotifyRequest struct {
	Candidate   *Node
	PowNonce    uint64
	PowIssuedAt int64
}

// NotifyEvent is one message of the Notify response stream: either a single
// handed-off key/value pair, or a final summary marking the stream done.
type NotifyEvent struct {
	Adopted bool
	Item    *HandoffItem
	Done    bool
}

// StoreRequest/RetrieveRequest/RetrieveResponse/RemoveRequest are the
// wire forms of the client-facing KV operations (spec.md §4.5.6).
type StoreRequest struct {
	Key      []byte
	RawKey   string
	Value    []byte
	TtlUnix  int64
}

type StoreResponse struct{}

type RetrieveRequest struct {
	Key []byte
}

// Status is the in-band outcome of a get (spec.md §4.5/§7): NotFound and
// Expired are ordinary results of a lookup, not transport errors, so a
// Retrieve/Get response always carries one alongside whatever value it has.
type Status int32

const (
	StatusOK Status = iota
	StatusNotFound
	StatusExpired
)

type RetrieveResponse struct {
	Value   []byte
	TtlUnix int64
	Status  Status
}

type RemoveRequest struct {
	Key []byte
}

type RemoveResponse struct{}

// HandoffItem is one key/value pair streamed from a departing owner to
// its successor (spec.md §4.5.5/§4.8). Handoff is client-streaming: the
// sender streams every pair it is shedding, then closes and receives a
// single summary.
type HandoffItem struct {
	Key           []byte
	RawKey        string
	Value         []byte
	ExpiresAtUnix int64
}

type HandoffSummary struct {
	Accepted int32
	Rejected int32
}

// Dev-mode introspection messages (SPEC_FULL.md §C.4).

type NodeSummaryResponse struct {
	Self          *Node
	Predecessor   *Node
	SuccessorList []*Node
	Fingers       []*FingerSummary
}

type FingerSummary struct {
	Index  int32
	Target []byte
	Node   *Node
}

type KVStoreSizeResponse struct {
	Size int32
}

type KVStoreDataResponse struct {
	Entries []*KVEntry
}

type KVEntry struct {
	Key           []byte
	RawKey        string
	Value         []byte
	ExpiresAtUnix int64
}
