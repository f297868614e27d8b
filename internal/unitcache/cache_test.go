package unitcache

import (
	"bytes"
	"crypto/sha256"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	cache, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	hash := sha256.Sum256([]byte("let x = 1\n"))
	key := KeyFor("test", hash)
	in := &Envelope{
		Engine:     "test",
		SourceHash: hash[:],
		Unit:       []byte{0x01, 0x02, 0x03},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out Envelope
	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if out.Engine != "test" {
		t.Errorf("Engine = %q, want test", out.Engine)
	}
	if !bytes.Equal(out.Unit, in.Unit) {
		t.Errorf("Unit = %v, want %v", out.Unit, in.Unit)
	}
	if !bytes.Equal(out.SourceHash, hash[:]) {
		t.Errorf("SourceHash mismatch")
	}
}

func TestGetMiss(t *testing.T) {
	cache, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	var out Envelope
	hit, err := cache.Get(KeyFor("test", sha256.Sum256([]byte("nothing"))), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected a miss for an unknown key")
	}
}

func TestKeySeparatesEngines(t *testing.T) {
	hash := sha256.Sum256([]byte("same source"))
	if KeyFor("alpha", hash) == KeyFor("beta", hash) {
		t.Error("different engines must map to different keys")
	}
}

func TestDropAll(t *testing.T) {
	cache, err := OpenAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}

	hash := sha256.Sum256([]byte("x"))
	key := KeyFor("test", hash)
	if err := cache.Put(key, &Envelope{Engine: "test", Unit: []byte{1}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}

	var out Envelope
	hit, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get after drop: %v", err)
	}
	if hit {
		t.Error("expected a miss after DropAll")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	if err := cache.Put(Key{}, &Envelope{}); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	var out Envelope
	hit, err := cache.Get(Key{}, &out)
	if err != nil || hit {
		t.Errorf("nil Get = (%v, %v), want miss and no error", hit, err)
	}
}
