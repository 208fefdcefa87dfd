package main

import (
	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"context"
	"crypto/rand"
	"flag"
	"log"
	"math/big"
	"time"
)

func randomID(space domain.Space) domain.ID {
	b := make([]byte, space.ByteLen)
	rand.Read(b)
	extraBits := space.ByteLen*8 - space.Bits
	if extraBits > 0 {
		b[0] &= 0xFF >> extraBits
	}
	return domain.ID(b)
}

func pickRandom(nodes []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(nodes))))
	return nodes[n.Int64()]
}

// discoverPeers pulls the peer addresses out of addr's dev-mode node
// summary (SPEC_FULL.md §C.4): self, predecessor, successor list, and the
// node address of every finger. The list is not deduplicated, since a load
// generator is happy to dial the same address twice.
func discoverPeers(pool *client.Pool, addr string, timeout time.Duration) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	summary, err := pool.GetNodeSummary(ctx, addr)
	if err != nil {
		return nil, err
	}

	var nodes []string
	if summary.Self != nil {
		nodes = append(nodes, summary.Self.Address)
	}
	if summary.Predecessor != nil {
		nodes = append(nodes, summary.Predecessor.Address)
	}
	for _, s := range summary.SuccessorList {
		nodes = append(nodes, s.Address)
	}
	for _, f := range summary.Fingers {
		if f.Node != nil {
			nodes = append(nodes, f.Node.Address)
		}
	}
	return nodes, nil
}

// client-worker is a standalone lookup load generator: it periodically
// refreshes its view of the ring from one node's dev-mode summary, then
// fires find_successor lookups against randomly chosen known nodes at the
// configured rate, logging latency and outcome of each.
func main() {
	bootstrapAddr := flag.String("bootstrap", "127.0.0.1:5000", "bootstrap node address (must have dev_mode enabled)")
	idBits := flag.Int("bits", 160, "identifier space size in bits, must match the ring's dht.idBits")
	rate := flag.Float64("rate", 1.0, "lookup requests per second")
	timeout := flag.Duration("timeout", 2*time.Second, "per-request timeout")
	refresh := flag.Duration("refresh", 30*time.Second, "refresh peer list interval")
	flag.Parse()

	space, err := domain.NewSpace(*idBits, 1)
	if err != nil {
		log.Fatalf("invalid identifier space: %v", err)
	}

	pool := client.New(client.WithDialTimeout(*timeout))
	defer pool.Close()

	nodes, err := discoverPeers(pool, *bootstrapAddr, *timeout)
	if err != nil || len(nodes) == 0 {
		log.Fatalf("failed to discover peers from bootstrap %s: %v", *bootstrapAddr, err)
	}
	log.Printf("bootstrap succeeded, discovered %d nodes", len(nodes))

	interval := time.Duration(float64(time.Second) / *rate)
	ticker := time.NewTicker(*refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := pickRandom(nodes)
			newNodes, err := discoverPeers(pool, n, *timeout)
			if err == nil && len(newNodes) > 0 {
				nodes = newNodes
				log.Printf("refreshed peer list, now have %d nodes", len(nodes))
			}
		default:
			target := randomID(space)
			n := pickRandom(nodes)

			ctx, cancel := context.WithTimeout(context.Background(), *timeout)
			start := time.Now()
			_, err := pool.FindSuccessor(ctx, n, target)
			latency := time.Since(start)
			if err != nil {
				log.Printf("[lookup] id=%s via %s ERROR: %v latency=%s", target.ToHexString(true), n, err, latency)
			} else {
				log.Printf("[lookup] id=%s via %s OK latency=%s", target.ToHexString(true), n, latency)
			}
			cancel()

			time.Sleep(interval)
		}
	}
}
