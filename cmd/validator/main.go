// Command validator is an out-of-process cluster oracle (spec.md §6): it
// collects get_node_summary from every node given on the command line, sorts
// them by ring position, and checks the invariants a healthy, stabilized
// ring must satisfy:
//
//	I1 - each node's successor's predecessor is that node itself.
//	I3 - each finger entry points to the node actually responsible for the
//	     finger's target key.
//	I4 - each node's successor list matches the sorted ring order.
//
// Every node must have been started with dev_mode enabled, since
// get_node_summary is refused otherwise.
package main

import (
	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"ChordDHT/internal/rpcpb"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"
)

func main() {
	timeout := flag.Duration("timeout", 10*time.Second, "per-node request timeout")
	flag.Parse()

	addrs := flag.Args()
	if len(addrs) == 0 {
		log.Fatal("usage: validator [--timeout=10s] <node-addr> [<node-addr> ...]")
	}

	pool := client.New(client.WithDialTimeout(*timeout))
	defer pool.Close()

	summaries := make([]*rpcpb.NodeSummaryResponse, 0, len(addrs))
	for _, addr := range addrs {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		summary, err := pool.GetNodeSummary(ctx, addr)
		cancel()
		if err != nil {
			log.Fatalf("get_node_summary failed for %s: %v (is dev_mode enabled?)", addr, err)
		}
		if summary.Self == nil {
			log.Fatalf("node %s returned a summary with no self entry", addr)
		}
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return domain.ID(summaries[i].Self.Id).Cmp(domain.ID(summaries[j].Self.Id)) < 0
	})

	ids := make([]domain.ID, len(summaries))
	for i, s := range summaries {
		ids[i] = domain.ID(s.Self.Id)
	}

	ok := true
	ok = checkPredecessors(summaries) && ok
	ok = checkFingers(summaries, ids) && ok
	ok = checkSuccessorLists(summaries) && ok

	if ok {
		fmt.Println("Looks good!")
		return
	}
	fmt.Println("Cluster is invalid!")
	os.Exit(1)
}

// checkPredecessors verifies I1: node i's successor (the next node in ring
// order) must report node i as its predecessor.
func checkPredecessors(summaries []*rpcpb.NodeSummaryResponse) bool {
	ok := true
	n := len(summaries)
	for i := 0; i < n; i++ {
		current := summaries[i].Self.Address
		next := summaries[(i+1)%n]
		if next.Predecessor == nil {
			fmt.Printf("node %s: successor %s has no predecessor set\n", current, next.Self.Address)
			ok = false
			continue
		}
		if next.Predecessor.Address != current {
			fmt.Printf("node %s: successor %s has wrong predecessor %s\n",
				current, next.Self.Address, next.Predecessor.Address)
			ok = false
		}
	}
	return ok
}

// checkFingers verifies I3: every finger entry must point to whichever
// sorted node actually owns the finger's target key (the first node at or
// after target, wrapping around to the smallest if none is).
func checkFingers(summaries []*rpcpb.NodeSummaryResponse, ids []domain.ID) bool {
	ok := true
	for _, s := range summaries {
		for _, f := range s.Fingers {
			if f.Node == nil {
				continue
			}
			target := domain.ID(f.Target)
			responsible := responsibleFor(target, ids, summaries)
			if responsible.Self.Address != f.Node.Address {
				fmt.Printf("node %s: finger[%d] target=%x points to %s, but %s is responsible\n",
					s.Self.Address, f.Index, f.Target, f.Node.Address, responsible.Self.Address)
				ok = false
			}
		}
	}
	return ok
}

// checkSuccessorLists verifies I4: node i's successor list, slot by slot,
// must equal the next j nodes in sorted ring order.
func checkSuccessorLists(summaries []*rpcpb.NodeSummaryResponse) bool {
	ok := true
	n := len(summaries)
	for i, s := range summaries {
		for j, succ := range s.SuccessorList {
			expected := summaries[(i+j+1)%n].Self.Address
			if succ.Address != expected {
				fmt.Printf("node %s: successor_list[%d]=%s, expected %s\n",
					s.Self.Address, j, succ.Address, expected)
				ok = false
			}
		}
	}
	return ok
}

// responsibleFor returns the sorted summary entry for the first node at or
// after target on the ring, wrapping to the smallest ID if target falls
// past every node.
func responsibleFor(target domain.ID, ids []domain.ID, summaries []*rpcpb.NodeSummaryResponse) *rpcpb.NodeSummaryResponse {
	for i, id := range ids {
		if target.Cmp(id) <= 0 {
			return summaries[i]
		}
	}
	return summaries[0]
}
