package main

import (
	"ChordDHT/internal/client"
	"ChordDHT/internal/domain"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "address of a DHT node to connect to")
	idBits := flag.Int("idBits", 160, "identifier space size in bits, must match the ring's dht.idBits")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout (e.g. 5s)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	space, err := domain.NewSpace(*idBits, 1)
	if err != nil {
		log.Fatalf("invalid identifier space: %v", err)
	}

	pool := client.New(client.WithDialTimeout(*timeout))
	defer pool.Close()

	currentAddr := *addr
	if err := pool.Health(context.Background(), currentAddr); err != nil {
		log.Fatalf("failed to reach node at %s: %v", currentAddr, err)
	}

	fmt.Printf("Chord interactive shell. Connected to %s\n", currentAddr)
	fmt.Println("Available commands: put/get/delete/lookup/summary/store/use/exit")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(fmt.Sprintf("chord[%s]> ", currentAddr))
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println("Aborted")
				continue
			}
			break
		}
		line.AppendHistory(input)

		args := strings.Fields(strings.TrimSpace(input))
		if len(args) == 0 {
			continue
		}
		cmd := args[0]

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)

		switch cmd {

		case "put":
			if len(args) < 3 {
				fmt.Println("Usage: put <key> <value> [ttlSeconds]")
				cancel()
				continue
			}
			key, value := args[1], args[2]
			var expiresAt int64
			if len(args) >= 4 {
				ttl, err := strconv.ParseInt(args[3], 10, 64)
				if err != nil {
					fmt.Printf("invalid ttl: %v\n", err)
					cancel()
					continue
				}
				if ttl > 0 {
					expiresAt = time.Now().Add(time.Duration(ttl) * time.Second).Unix()
				}
			}
			start := time.Now()
			res := domain.Resource{
				Key:           space.NewIdFromString(key),
				RawKey:        key,
				Value:         []byte(value),
				ExpiresAtUnix: expiresAt,
			}
			err := pool.Put(ctx, currentAddr, res)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Printf("Put failed (%v) | latency=%s\n", err, elapsed)
			} else {
				fmt.Printf("Put succeeded (key=%s, value=%s) | latency=%s\n", key, value, elapsed)
			}

		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <key>")
				cancel()
				continue
			}
			key := args[1]
			start := time.Now()
			val, ttlUnix, err := pool.Get(ctx, currentAddr, space.NewIdFromString(key))
			elapsed := time.Since(start)
			switch {
			case err == nil:
				fmt.Printf("Get succeeded (key=%s, value=%s, ttlUnix=%d) | latency=%s\n", key, val, ttlUnix, elapsed)
			case errors.Is(err, client.ErrExpired):
				fmt.Printf("Key expired (last value=%s, ttlUnix=%d): %s | latency=%s\n", val, ttlUnix, key, elapsed)
			case errors.Is(err, client.ErrNotFound):
				fmt.Printf("Key not found: %s | latency=%s\n", key, elapsed)
			default:
				fmt.Printf("Get failed: %v | latency=%s\n", err, elapsed)
			}

		case "delete":
			if len(args) < 2 {
				fmt.Println("Usage: delete <key>")
				cancel()
				continue
			}
			key := args[1]
			start := time.Now()
			err := pool.Delete(ctx, currentAddr, space.NewIdFromString(key))
			elapsed := time.Since(start)
			switch {
			case err == nil:
				fmt.Printf("Delete succeeded (key=%s) | latency=%s\n", key, elapsed)
			case errors.Is(err, client.ErrNotFound):
				fmt.Printf("Key not found: %s | latency=%s\n", key, elapsed)
			default:
				fmt.Printf("Delete failed: %v | latency=%s\n", err, elapsed)
			}

		case "lookup":
			if len(args) < 2 {
				fmt.Println("Usage: lookup <key>")
				cancel()
				continue
			}
			key := args[1]
			start := time.Now()
			n, err := pool.FindSuccessor(ctx, currentAddr, space.NewIdFromString(key))
			elapsed := time.Since(start)
			if err != nil {
				fmt.Printf("Lookup failed: %v | latency=%s\n", err, elapsed)
			} else {
				fmt.Printf("Lookup result: successor=%s (%s) | latency=%s\n",
					n.ID.ToHexString(true), n.Addr, elapsed)
			}

		case "summary":
			start := time.Now()
			summary, err := pool.GetNodeSummary(ctx, currentAddr)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Printf("GetNodeSummary failed: %v (is dev_mode enabled on %s?) | latency=%s\n", err, currentAddr, elapsed)
				cancel()
				continue
			}
			fmt.Println("Node summary:")
			if summary.Self != nil {
				fmt.Printf("  Self: %x (%s)\n", summary.Self.Id, summary.Self.Address)
			}
			if summary.Predecessor != nil {
				fmt.Printf("  Predecessor: %x (%s)\n", summary.Predecessor.Id, summary.Predecessor.Address)
			}
			fmt.Println("  Successors:")
			for i, s := range summary.SuccessorList {
				fmt.Printf("    [%d] %x (%s)\n", i, s.Id, s.Address)
			}
			fmt.Println("  Fingers:")
			for _, f := range summary.Fingers {
				if f.Node == nil {
					continue
				}
				fmt.Printf("    [%d] target=%x -> %x (%s)\n", f.Index, f.Target, f.Node.Id, f.Node.Address)
			}
			fmt.Printf("Latency: %s\n", elapsed)

		case "store":
			start := time.Now()
			entries, err := pool.GetKVStoreData(ctx, currentAddr)
			elapsed := time.Since(start)
			if err != nil {
				fmt.Printf("GetKVStoreData failed: %v (is dev_mode enabled on %s?) | latency=%s\n", err, currentAddr, elapsed)
				cancel()
				continue
			}
			fmt.Printf("Stored resources (count=%d) | latency=%s\n", len(entries), elapsed)
			for _, e := range entries {
				fmt.Printf("  - key=%s | value=%s\n", e.RawKey, e.Value)
			}

		case "use":
			if len(args) < 2 {
				fmt.Println("Usage: use <addr>")
				cancel()
				continue
			}
			newAddr := args[1]
			if err := pool.Health(ctx, newAddr); err != nil {
				fmt.Printf("Failed to connect to %s: %v\n", newAddr, err)
				cancel()
				continue
			}
			currentAddr = newAddr
			fmt.Printf("Switched connection to %s\n", currentAddr)

		case "exit", "quit":
			fmt.Println("Bye!")
			cancel()
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		cancel()
	}
}
