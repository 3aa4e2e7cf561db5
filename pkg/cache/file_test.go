package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCache_SetThenGet(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte(`{"servers":[]}`), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit || string(data) != `{"servers":[]}` {
		t.Errorf("Get = (%q, %v), want stored payload", data, hit)
	}
}

func TestFileCache_MissBeforeSet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if _, hit, err := c.Get(context.Background(), "absent"); err != nil || hit {
		t.Errorf("Get of absent key = (hit=%v, err=%v), want clean miss", hit, err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("ttl=0 entry should read as expired")
	}

	// The expired file was removed on read.
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	for _, sub := range entries {
		files, _ := os.ReadDir(filepath.Join(c.Dir(), sub.Name()))
		if len(files) != 0 {
			t.Errorf("expired entry file left behind under %s", sub.Name())
		}
	}
}

func TestFileCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	// Truncate the entry file behind the cache's back.
	hash := Hash([]byte("k"))
	path := filepath.Join(c.Dir(), hash[:2], hash[2:]+".json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("corrupt entry = (hit=%v, err=%v), want clean miss", hit, err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt entry file should be removed")
	}
}

func TestFileCache_Delete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of absent key error: %v", err)
	}
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := first.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	first.Close()

	second, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	data, hit, _ := second.Get(ctx, "k")
	if !hit || string(data) != "v" {
		t.Errorf("entry did not survive reopen: (%q, %v)", data, hit)
	}
}

func TestNullCache_AlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c NullCache

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); err != nil || hit {
		t.Errorf("NullCache Get = (hit=%v, err=%v), want clean miss", hit, err)
	}
}
