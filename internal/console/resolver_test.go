package console

import (
	"errors"
	"testing"
)

type testPlayer struct {
	id   int64
	name string
}

func (p *testPlayer) EntityID() int64     { return p.id }
func (p *testPlayer) DisplayName() string { return p.name }

func staticSource(players ...*testPlayer) EntitySource {
	return EntitySourceFunc(func() ([]Entity, error) {
		entities := make([]Entity, len(players))
		for i, p := range players {
			entities[i] = p
		}
		return entities, nil
	})
}

var (
	ben      = &testPlayer{id: 1, name: "Ben"}
	benjamin = &testPlayer{id: 2, name: "Benjamin"}
	alice    = &testPlayer{id: 3, name: "Alice  Cooper"}
)

func TestResolveAmbiguousAndExact(t *testing.T) {
	r := NewResolver(staticSource(ben, benjamin))

	res := r.Resolve("be")
	if res.State != Ambiguous {
		t.Fatalf("Resolve(be) state = %v, want ambiguous", res.State)
	}
	if len(res.Candidates) != 2 {
		t.Errorf("Resolve(be) candidates = %d, want 2", len(res.Candidates))
	}

	for _, query := range []string{"Ben", "ben", "BEN", "  ben  "} {
		res := r.Resolve(query)
		if res.State != Found || res.Entity != ben {
			t.Errorf("Resolve(%q) = %v %v, want found Ben", query, res.State, res.Entity)
		}
	}

	res = r.Resolve("benj")
	if res.State != Found || res.Entity != benjamin {
		t.Errorf("Resolve(benj) = %v, want found Benjamin", res.State)
	}
}

func TestResolveAmbiguousWithoutExactMatch(t *testing.T) {
	r := NewResolver(staticSource(&testPlayer{id: 1, name: "Bob"}, &testPlayer{id: 2, name: "Bobby"}, &testPlayer{id: 3, name: "bob"}))

	if res := r.Resolve("bob"); res.State != Ambiguous {
		t.Errorf("Resolve(bob) = %v, want ambiguous when two names match exactly", res.State)
	}
}

func TestResolveNormalizesWhitespace(t *testing.T) {
	r := NewResolver(staticSource(alice, ben))

	res := r.Resolve("alice   cooper")
	if res.State != Found || res.Entity != alice {
		t.Errorf("Resolve = %v, want found Alice Cooper", res.State)
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(staticSource(ben, benjamin))

	for _, query := range []string{"zed", "", "   "} {
		if res := r.Resolve(query); res.State != NotFound {
			t.Errorf("Resolve(%q) = %v, want not found", query, res.State)
		}
	}
}

func TestResolveByID(t *testing.T) {
	r := NewResolver(staticSource(ben, benjamin))

	res := r.ResolveByID(2)
	if res.State != Found || res.Entity != benjamin {
		t.Errorf("ResolveByID(2) = %v, want found Benjamin", res.State)
	}
	if res := r.ResolveByID(99); res.State != NotFound {
		t.Errorf("ResolveByID(99) = %v, want not found", res.State)
	}
}

func TestResolveSourceFailuresAreNotFound(t *testing.T) {
	failing := NewResolver(EntitySourceFunc(func() ([]Entity, error) {
		return nil, errors.New("world not loaded")
	}))
	if res := failing.Resolve("ben"); res.State != NotFound {
		t.Errorf("error source: state = %v, want not found", res.State)
	}

	panicking := NewResolver(EntitySourceFunc(func() ([]Entity, error) {
		panic("player list torn down")
	}))
	if res := panicking.ResolveByID(1); res.State != NotFound {
		t.Errorf("panicking source: state = %v, want not found", res.State)
	}

	var nilResolver *Resolver
	if res := nilResolver.Resolve("ben"); res.State != NotFound {
		t.Errorf("nil resolver: state = %v, want not found", res.State)
	}
}

func TestResolveTakesFreshSnapshot(t *testing.T) {
	online := []*testPlayer{ben}
	r := NewResolver(EntitySourceFunc(func() ([]Entity, error) {
		entities := make([]Entity, len(online))
		for i, p := range online {
			entities[i] = p
		}
		return entities, nil
	}))

	if res := r.Resolve("ben"); res.State != Found {
		t.Fatalf("state = %v, want found", res.State)
	}

	online = append(online, benjamin)
	if res := r.Resolve("be"); res.State != Ambiguous {
		t.Errorf("after join: state = %v, want ambiguous", res.State)
	}

	online = nil
	if res := r.Resolve("ben"); res.State != NotFound {
		t.Errorf("after leave: state = %v, want not found", res.State)
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"  Ben  ":         "ben",
		"Alice \t Cooper": "alice cooper",
		"STRASSE":         "strasse",
		"":                "",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
