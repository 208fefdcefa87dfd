package client

import (
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNormalizeErr(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", status.Error(codes.NotFound, "x"), ErrNotFound},
		{"deadline", status.Error(codes.DeadlineExceeded, "x"), ErrDeadlineExceeded},
		{"unavailable", status.Error(codes.Unavailable, "x"), ErrUnavailable},
		{"canceled", status.Error(codes.Canceled, "x"), ErrUnavailable},
		{"internal", status.Error(codes.Internal, "x"), ErrInternal},
		{"non-status", errors.New("boom"), ErrInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeErr(tc.in)
			if got != tc.want {
				t.Fatalf("normalizeErr(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestPoolGetFromPoolWithoutAddRef(t *testing.T) {
	p := New()
	defer p.Close()

	if _, _, err := p.GetFromPool("127.0.0.1:9"); !errors.Is(err, ErrClientNotInPool) {
		t.Fatalf("expected ErrClientNotInPool, got %v", err)
	}
}

func TestPoolReleaseUnknownAddrIsNoop(t *testing.T) {
	p := New(WithIdleTTL(10 * time.Millisecond))
	defer p.Close()

	p.Release("127.0.0.1:9") // must not panic
}
