package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"ChordDHT/internal/domain"
	"ChordDHT/internal/logger"
	"ChordDHT/internal/node"
)

const tcpRequestTimeout = 5 * time.Second

// TCPServer is the legacy line-oriented KV endpoint (SPEC_FULL.md §C.5): a
// minimal stand-in for the out-of-scope "legacy client protocol" spec.md
// names, wired to the same Get/Put node operations the gRPC client surface
// uses. Each connection accepts one command per line and replies with one
// line: "GET <key>" -> "OK <value>" | "EXPIRED <value>" | "NOT_FOUND" |
// "ERR <reason>"; "PUT <key> <value> <ttlSeconds>" -> "OK" | "ERR <reason>".
type TCPServer struct {
	listener net.Listener
	node     *node.Node
	lgr      logger.Logger
}

// NewTCPServer binds addr and returns a server ready to Serve.
func NewTCPServer(addr string, n *node.Node, lgr logger.Logger) (*TCPServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen on %s: %w", addr, err)
	}
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &TCPServer{listener: lis, node: n, lgr: lgr}, nil
}

// Serve accepts connections until the listener is closed.
func (s *TCPServer) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return fmt.Errorf("tcp accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

func (s *TCPServer) Close() error {
	return s.listener.Close()
}

func (s *TCPServer) handleConn(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply := s.dispatch(line)
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			s.lgr.Warn("tcp: write failed", logger.F("remote", conn.RemoteAddr().String()), logger.F("err", err))
			return
		}
	}
}

func (s *TCPServer) dispatch(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "ERR empty command"
	}

	ctx, cancel := context.WithTimeout(context.Background(), tcpRequestTimeout)
	defer cancel()

	switch strings.ToUpper(fields[0]) {
	case "GET":
		if len(fields) != 2 {
			return "ERR usage: GET <key>"
		}
		key := s.node.Space().NewIdFromString(fields[1])
		res, err := s.node.Get(ctx, key)
		switch {
		case err == nil:
			return "OK " + string(res.Value)
		case errors.Is(err, domain.ErrResourceExpired):
			return "EXPIRED " + string(res.Value)
		case errors.Is(err, domain.ErrResourceNotFound):
			return "NOT_FOUND"
		default:
			return "ERR " + err.Error()
		}
	case "PUT":
		if len(fields) != 4 {
			return "ERR usage: PUT <key> <value> <ttlSeconds>"
		}
		ttlSeconds, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return "ERR invalid ttl"
		}
		var expiresAt int64
		if ttlSeconds > 0 {
			expiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second).Unix()
		}
		rawKey := fields[1]
		res := domain.Resource{
			Key:           s.node.Space().NewIdFromString(rawKey),
			RawKey:        rawKey,
			Value:         []byte(fields[2]),
			ExpiresAtUnix: expiresAt,
		}
		if err := s.node.Put(ctx, res); err != nil {
			return "ERR " + err.Error()
		}
		return "OK"
	default:
		return "ERR unknown command " + fields[0]
	}
}
