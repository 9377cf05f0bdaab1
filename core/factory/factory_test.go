package factory

import (
	"errors"
	"testing"
	"time"
)

type sample struct {
	A       int
	Timeout time.Duration
}

type sampleConf struct {
	A       int           `json:"a"`
	Timeout time.Duration `json:"timeout"`
}

func newSampleRegistry(t *testing.T) *Registry[*sample] {
	t.Helper()
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{A: c.A, Timeout: c.Timeout}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := newSampleRegistry(t)
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": "3", "timeout": "2s"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
	if inst.Timeout != 2*time.Second {
		t.Fatalf("expected 2s got %v", inst.Timeout)
	}
}

func TestRegistry_Unknown(t *testing.T) {
	reg := newSampleRegistry(t)
	_, err := reg.Create(ModuleConfig{Type: "other"})
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType got %v", err)
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	reg := newSampleRegistry(t)
	if err := reg.Register("s", func(map[string]any) (*sample, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := reg.Register("n", nil); err == nil {
		t.Fatalf("expected nil factory error")
	}
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic")
		}
	}()
	reg.MustRegister("s", func(map[string]any) (*sample, error) { return nil, nil })
}

func TestRegistry_Names(t *testing.T) {
	reg := newSampleRegistry(t)
	reg.MustRegister("a", func(map[string]any) (*sample, error) { return &sample{}, nil })
	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "s" {
		t.Fatalf("unexpected names %v", names)
	}
}
