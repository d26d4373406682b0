package binding_test

import (
	"runtime"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/goliatone/go-tardigrade/pkg/binding"
)

func TestStore(t *testing.T) {
	store := binding.NewStore()
	el := &html.Node{Type: html.ElementNode, Data: "div"}

	if _, ok := store.Get(el); ok {
		t.Fatalf("empty store must miss")
	}
	if prev, had := store.Set(el, 1); had || prev != nil {
		t.Fatalf("expected no previous value, got %v (had=%v)", prev, had)
	}
	if prev, had := store.Set(el, 2); !had || prev != 1 {
		t.Fatalf("expected previous value 1, got %v (had=%v)", prev, had)
	}
	if got, ok := store.Get(el); !ok || got != 2 {
		t.Fatalf("expected 2, got %v (ok=%v)", got, ok)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}

	store.Delete(el)
	if _, ok := store.Get(el); ok || store.Len() != 0 {
		t.Fatalf("expected entry to be deleted")
	}

	if _, had := store.Set(nil, 1); had || store.Len() != 0 {
		t.Fatalf("nil element must be ignored")
	}
	runtime.KeepAlive(el)
}

func TestStore_ReleasesDroppedElements(t *testing.T) {
	store := binding.NewStore()
	attach := func() {
		el := &html.Node{Type: html.ElementNode, Data: "section"}
		store.Set(el, &session{ID: 3})
	}
	attach()
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}

	for i := 0; i < 50 && store.Len() != 0; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if n := store.Len(); n != 0 {
		t.Fatalf("expected entry of unreachable element to be released, %d left", n)
	}
}
