package cmap

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	m := New[int]()
	if m == nil {
		t.Fatal("New() returned nil")
	}
	if len(m.shards) != DefaultShardCount {
		t.Errorf("shard count = %d, want %d", len(m.shards), DefaultShardCount)
	}
}

func TestShardCountFallback(t *testing.T) {
	tests := []struct {
		input    int
		expected int
	}{
		{0, DefaultShardCount},
		{-1, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{4, 4},
		{32, 32},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("shards=%d", tt.input), func(t *testing.T) {
			m := newWithShards[int](tt.input)
			if len(m.shards) != tt.expected {
				t.Errorf("newWithShards(%d) shard count = %d, want %d",
					tt.input, len(m.shards), tt.expected)
			}
		})
	}
}

func TestSetDelete(t *testing.T) {
	m := New[int]()

	m.Set("key1", 100)
	m.Set("key2", 200)
	m.Set("key1", 101)
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}

	got := map[string]int{}
	m.Range(func(k string, v int) bool {
		got[k] = v
		return true
	})
	if got["key1"] != 101 || got["key2"] != 200 {
		t.Errorf("contents = %v, want key1=101 key2=200", got)
	}

	m.Delete("key2")
	m.Delete("missing")
	if m.Count() != 1 {
		t.Errorf("Count() after Delete = %d, want 1", m.Count())
	}
}

func TestRange(t *testing.T) {
	m := newWithShards[int](4)
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%02d", i), i)
	}

	var keys []string
	m.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	if len(keys) != 50 || keys[0] != "k00" || keys[49] != "k49" {
		t.Errorf("Range visited %d keys, first=%v", len(keys), keys[:1])
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return visited < 5
	})
	if visited != 5 {
		t.Errorf("Range with early stop visited %d, want 5", visited)
	}

}

func TestValues(t *testing.T) {
	m := newWithShards[int](4)
	for i := 0; i < 50; i++ {
		m.Set(fmt.Sprintf("k%02d", i), i)
	}

	values := m.Values()
	// The snapshot is detached from the map.
	for i := 0; i < 50; i++ {
		m.Delete(fmt.Sprintf("k%02d", i))
	}
	if len(values) != 50 {
		t.Fatalf("len(Values()) = %d, want 50", len(values))
	}
	sort.Ints(values)
	for i, v := range values {
		if v != i {
			t.Fatalf("values[%d] = %d, want %d", i, v, i)
		}
	}
	if got := len(m.Values()); got != 0 {
		t.Errorf("len(Values()) on empty map = %d, want 0", got)
	}
}

func TestDistribution(t *testing.T) {
	m := newWithShards[int](8)
	for i := 0; i < 800; i++ {
		m.Set(fmt.Sprintf("conn-%d", i), i)
	}
	for i, s := range m.shards {
		if len(s.items) == 0 {
			t.Errorf("shard %d is empty after 800 inserts", i)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	m := New[int]()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-%d", w, i)
				m.Set(key, i)
				m.Count()
				if i%2 == 0 {
					m.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	if got := m.Count(); got != 8*100 {
		t.Errorf("Count() = %d, want %d", got, 8*100)
	}
}
