// internal/reqctx/reqctx_test.go
//
// Unit-tests for the request-scoped container.
//
// Context
// -------
// Two invariants matter here and both are load-bearing for tenant safety:
//
//   • Exactly-once resolution — N call sites inside one request trigger a
//     single upstream fetch and all observe the identical result.
//   • Isolation — concurrent requests never see each other's identity or
//     block on each other's resolution.
//
// Run: go test ./internal/reqctx -race -v

package reqctx

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

type fakeStore struct{ ID string }

func TestMemoize_ExactlyOnce(t *testing.T) {
	ctx := Bind(context.Background())

	var calls int32
	resolve := func(context.Context) (*fakeStore, error) {
		atomic.AddInt32(&calls, 1)
		return &fakeStore{ID: "abc123"}, nil
	}

	const sites = 16
	var wg sync.WaitGroup
	results := make([]*fakeStore, sites)
	for i := 0; i < sites; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := Memoize(ctx, resolve)
			if err != nil {
				t.Errorf("site %d: %v", i, err)
				return
			}
			results[i] = s
		}(i)
	}
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("resolution ran %d times, want 1", n)
	}
	for i := 1; i < sites; i++ {
		if results[i] != results[0] {
			t.Fatalf("site %d observed a different snapshot", i)
		}
	}
}

func TestMemoize_ErrorSettlesToo(t *testing.T) {
	ctx := Bind(context.Background())
	sentinel := errors.New("upstream down")

	var calls int32
	resolve := func(context.Context) (*fakeStore, error) {
		atomic.AddInt32(&calls, 1)
		return nil, sentinel
	}

	for i := 0; i < 3; i++ {
		if _, err := Memoize(ctx, resolve); !errors.Is(err, sentinel) {
			t.Fatalf("call %d: err = %v, want sentinel", i, err)
		}
	}
	if calls != 1 {
		t.Fatalf("failed resolution ran %d times, want 1", calls)
	}
}

func TestContainers_DoNotBleedAcrossRequests(t *testing.T) {
	const requests = 32
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := Bind(context.Background())
			id := string(rune('a'+i%26)) + "-store"

			SetStoreID(ctx, id)
			SetLocale(ctx, "en")

			got, ok := StoreID(ctx)
			if !ok || got != id {
				t.Errorf("request %d: store id = %q/%v, want %q", i, got, ok, id)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoize_UnboundContextRunsDirectly(t *testing.T) {
	var calls int32
	for i := 0; i < 2; i++ {
		_, err := Memoize(context.Background(), func(context.Context) (*fakeStore, error) {
			atomic.AddInt32(&calls, 1)
			return &fakeStore{}, nil
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if calls != 2 {
		t.Fatalf("unbound context memoized: %d calls, want 2", calls)
	}
}

func TestStoreID_ClearedMeansUnscoped(t *testing.T) {
	ctx := Bind(context.Background())

	if _, ok := StoreID(ctx); ok {
		t.Fatal("fresh container reports a store id")
	}

	SetStoreID(ctx, "abc123")
	if id, ok := StoreID(ctx); !ok || id != "abc123" {
		t.Fatalf("got %q/%v", id, ok)
	}

	SetStoreID(ctx, "")
	if _, ok := StoreID(ctx); ok {
		t.Fatal("cleared container still reports a store id")
	}
}
