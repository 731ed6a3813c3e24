package platform

import "testing"

func TestRegistry(t *testing.T) {
	Unregister(KindWGL)
	if IsRegistered(KindWGL) {
		t.Fatalf("expected wgl to be unregistered")
	}

	Register(KindWGL, func(Options) (Backend, error) { return nil, nil })
	t.Cleanup(func() { Unregister(KindWGL) })

	if !IsRegistered(KindWGL) {
		t.Fatalf("expected wgl to be registered")
	}
	found := false
	for _, k := range Registered() {
		if k == KindWGL {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected wgl in %v", Registered())
	}
}

func TestCreate_NilBackendIsInternal(t *testing.T) {
	Register(KindWGL, func(Options) (Backend, error) { return nil, nil })
	t.Cleanup(func() { Unregister(KindWGL) })

	p, err := Create(KindWGL, Options{})
	if p != nil || err == nil {
		t.Fatalf("expected failure, got %v %v", p, err)
	}
}

func TestLibraryNames_Override(t *testing.T) {
	opts := Options{Libraries: map[string][]string{"egl": {"libEGL_mesa.so.0"}}}
	if got := opts.LibraryNames("egl", "libEGL.so.1"); len(got) != 1 || got[0] != "libEGL_mesa.so.0" {
		t.Fatalf("expected override, got %v", got)
	}
	if got := opts.LibraryNames("gbm", "libgbm.so.1"); len(got) != 1 || got[0] != "libgbm.so.1" {
		t.Fatalf("expected default, got %v", got)
	}
}
