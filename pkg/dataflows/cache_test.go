package dataflows

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCacheManager_RoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	in := Info{"longName": "Morgan Stanley", "marketCap": 1.5e11}
	if err := cm.Set("yahoo", "info", "MS", in); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var out Info
	if !cm.Get("yahoo", "info", "MS", &out) {
		t.Fatal("expected cache hit")
	}
	if out["longName"] != "Morgan Stanley" {
		t.Errorf("unexpected cached value: %v", out)
	}

	var miss Info
	if cm.Get("yahoo", "info", "GS", &miss) {
		t.Error("expected cache miss for other params")
	}
}

func TestCacheManager_Disabled(t *testing.T) {
	for name, cm := range map[string]*CacheManager{
		"disabled": NewCacheManager(t.TempDir(), time.Hour, false),
		"no dir":   NewCacheManager("", time.Hour, true),
		"nil":      nil,
	} {
		t.Run(name, func(t *testing.T) {
			if err := cm.Set("yahoo", "info", "MS", Info{"a": 1}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			var out Info
			if cm.Get("yahoo", "info", "MS", &out) {
				t.Error("disabled cache must not hit")
			}
		})
	}
}

func TestCacheManager_Expired(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Nanosecond, true)
	if err := cm.Set("yahoo", "info", "MS", Info{"a": 1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var out Info
	if cm.Get("yahoo", "info", "MS", &out) {
		t.Error("expired entry must not hit")
	}
}

func TestCacheManager_ConcurrentSet(t *testing.T) {
	dir := t.TempDir()
	cm := NewCacheManager(dir, time.Hour, true)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := Info{"longName": strings.Repeat(fmt.Sprintf("writer-%02d ", i), 200)}
			errs <- cm.Set("yahoo", "info", "MS", in)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	var out Info
	if !cm.Get("yahoo", "info", "MS", &out) {
		t.Fatal("expected a complete cache entry after concurrent writes")
	}
	name, _ := out["longName"].(string)
	if !strings.HasPrefix(name, "writer-") || strings.Count(name, name[:10]) != 200 {
		t.Errorf("cache entry mixes writers: %.40q", name)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || strings.HasSuffix(entries[0].Name(), ".tmp") {
		t.Errorf("expected a single cache file, got %v", entries)
	}
}
