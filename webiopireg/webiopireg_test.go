// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopireg

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

func reset(t *testing.T) {
	t.Helper()
	mu.Lock()
	byName = map[string]*Ref{}
	byAlias = map[string]*Ref{}
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		byName = map[string]*Ref{}
		byAlias = map[string]*Ref{}
		mu.Unlock()
	})
}

func simOpener(opts *webiopitest.Opts) Opener {
	return func() (webiopi.Endpoint, error) {
		return webiopitest.New(opts), nil
	}
}

func TestOpen(t *testing.T) {
	reset(t)
	if _, err := Open(""); err == nil {
		t.Fatal("Open() on an empty registry succeeded")
	}
	if err := Register("garage", []string{"g"}, simOpener(&webiopitest.Opts{Pins: []int{4}})); err != nil {
		t.Fatal(err)
	}
	if err := Register("bench", nil, simOpener(&webiopitest.Opts{Pins: []int{17}})); err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		name string
		pin  int
	}{{"garage", 4}, {"g", 4}, {"bench", 17}, {"", 17}} {
		e, err := Open(tc.name)
		if err != nil {
			t.Fatalf("Open(%q) = %v", tc.name, err)
		}
		if _, err := e.Value(context.Background(), tc.pin); err != nil {
			t.Errorf("Open(%q) returned the wrong device: %v", tc.name, err)
		}
		e.Close()
	}
	if _, err := Open("attic"); err == nil {
		t.Error("Open(attic) succeeded")
	}
}

func TestOpen_error(t *testing.T) {
	reset(t)
	want := errors.New("unreachable")
	if err := Register("down", nil, func() (webiopi.Endpoint, error) { return nil, want }); err != nil {
		t.Fatal(err)
	}
	if _, err := Open("down"); err != want {
		t.Errorf("Open() = %v, want %v", err, want)
	}
}

func TestRegister(t *testing.T) {
	reset(t)
	o := simOpener(nil)
	if err := Register("garage", []string{"g", "pi"}, o); err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name    string
		aliases []string
		o       Opener
	}{
		{"", nil, o},
		{"shed", nil, nil},
		{"12", nil, o},
		{"a:b", nil, o},
		{"shed", []string{""}, o},
		{"shed", []string{"shed"}, o},
		{"shed", []string{"3"}, o},
		{"shed", []string{"x:y"}, o},
		{"garage", nil, o},
		{"g", nil, o},
		{"shed", []string{"garage"}, o},
		{"shed", []string{"pi"}, o},
	} {
		if err := Register(tc.name, tc.aliases, tc.o); err == nil {
			t.Errorf("Register(%q, %q) succeeded", tc.name, tc.aliases)
		}
	}
	if got := len(All()); got != 1 {
		t.Errorf("All() has %d refs, want 1", got)
	}
}

func TestAll(t *testing.T) {
	reset(t)
	for _, n := range []string{"shed", "attic", "garage"} {
		if err := Register(n, []string{n + "-alias"}, simOpener(nil)); err != nil {
			t.Fatal(err)
		}
	}
	all := All()
	var names []string
	for _, r := range all {
		names = append(names, r.Name)
	}
	if diff := cmp.Diff(names, []string{"attic", "garage", "shed"}); diff != "" {
		t.Errorf("All() difference (-got +want):\n%s", diff)
	}
	// The result is a copy.
	all[0].Aliases[0] = "changed"
	if a := All()[0].Aliases[0]; a != "attic-alias" {
		t.Errorf("All() aliased internal state: %q", a)
	}
}

func TestUnregister(t *testing.T) {
	reset(t)
	if err := Register("garage", []string{"g"}, simOpener(nil)); err != nil {
		t.Fatal(err)
	}
	if err := Unregister("g"); err == nil {
		t.Error("Unregister() accepted an alias")
	}
	if err := Unregister("garage"); err != nil {
		t.Fatal(err)
	}
	if err := Unregister("garage"); err == nil {
		t.Error("Unregister() twice succeeded")
	}
	// The alias is free again.
	if err := Register("g", nil, simOpener(nil)); err != nil {
		t.Error(err)
	}
}
