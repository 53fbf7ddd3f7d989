// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopireg

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/webiopi"
)

// Opener opens a handle to a WebIOPi device.
//
// The caller owns the returned Endpoint and must close it.
type Opener func() (webiopi.Endpoint, error)

// Ref references a WebIOPi device.
//
// It is returned by All() to enumerate all registered devices.
type Ref struct {
	// Name of the device. It is unique in the registry.
	Name string
	// Aliases are the alternative names that can be used to reference this
	// device.
	Aliases []string
	// Open is the factory to open a handle to this device.
	Open Opener
}

// Open opens a device by its name or an alias.
//
// Specify the empty string "" to get the device with the lexically smallest
// name.
func Open(name string) (webiopi.Endpoint, error) {
	var r *Ref
	var err error
	func() {
		mu.Lock()
		defer mu.Unlock()
		if len(byName) == 0 {
			err = errors.New("webiopireg: no device registered")
			return
		}
		if len(name) == 0 {
			r = getDefault()
			return
		}
		if r = byName[name]; r == nil {
			r = byAlias[name]
		}
	}()
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.New("webiopireg: can't open unknown device: " + strconv.Quote(name))
	}
	return r.Open()
}

// All returns a copy of all the registered references.
//
// The list is sorted by device name.
func All() []*Ref {
	mu.Lock()
	defer mu.Unlock()
	out := make([]*Ref, 0, len(byName))
	for _, v := range byName {
		r := &Ref{Name: v.Name, Aliases: make([]string, len(v.Aliases)), Open: v.Open}
		copy(r.Aliases, v.Aliases)
		out = insertRef(out, r)
	}
	return out
}

// Register registers a device under name.
//
// Names and aliases must be non empty, must not be a number and must not
// contain ':'. Registering the same name or alias twice is an error.
func Register(name string, aliases []string, o Opener) error {
	if err := checkName(name); err != nil {
		return errors.New("webiopireg: can't register device " + strconv.Quote(name) + ": " + err.Error())
	}
	if o == nil {
		return errors.New("webiopireg: can't register device " + strconv.Quote(name) + " with nil Opener")
	}
	for _, alias := range aliases {
		if err := checkName(alias); err != nil {
			return errors.New("webiopireg: can't register device " + strconv.Quote(name) + " with alias " + strconv.Quote(alias) + ": " + err.Error())
		}
		if alias == name {
			return errors.New("webiopireg: can't register device " + strconv.Quote(name) + " with an alias the same as its name")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if _, ok := byName[name]; ok {
		return errors.New("webiopireg: can't register device " + strconv.Quote(name) + " twice")
	}
	if _, ok := byAlias[name]; ok {
		return errors.New("webiopireg: can't register device " + strconv.Quote(name) + "; it is already an alias")
	}
	for _, alias := range aliases {
		if _, ok := byName[alias]; ok {
			return errors.New("webiopireg: can't register device " + strconv.Quote(name) + "; alias " + strconv.Quote(alias) + " is already a device")
		}
		if _, ok := byAlias[alias]; ok {
			return errors.New("webiopireg: can't register device " + strconv.Quote(name) + "; alias " + strconv.Quote(alias) + " is already an alias")
		}
	}

	r := &Ref{Name: name, Aliases: make([]string, len(aliases)), Open: o}
	copy(r.Aliases, aliases)
	byName[name] = r
	for _, alias := range aliases {
		byAlias[alias] = r
	}
	return nil
}

// Unregister removes a previously registered device.
//
// Endpoints already opened stay usable.
func Unregister(name string) error {
	mu.Lock()
	defer mu.Unlock()
	r := byName[name]
	if r == nil {
		return errors.New("webiopireg: can't unregister unknown device " + strconv.Quote(name))
	}
	delete(byName, name)
	for _, alias := range r.Aliases {
		delete(byAlias, alias)
	}
	return nil
}

//

var (
	mu      sync.Mutex
	byName  = map[string]*Ref{}
	byAlias = map[string]*Ref{}
)

func checkName(n string) error {
	if len(n) == 0 {
		return errors.New("empty name")
	}
	if _, err := strconv.Atoi(n); err == nil {
		return errors.New("name is a number")
	}
	if strings.Contains(n, ":") {
		return errors.New("name contains ':'")
	}
	return nil
}

// getDefault returns the Ref with the lexically smallest name.
func getDefault() *Ref {
	var o *Ref
	for n, r := range byName {
		if o == nil || n < o.Name {
			o = r
		}
	}
	return o
}

func insertRef(l []*Ref, r *Ref) []*Ref {
	n := r.Name
	i := search(len(l), func(i int) bool { return l[i].Name > n })
	l = append(l, nil)
	copy(l[i+1:], l[i:])
	l[i] = r
	return l
}

// search implements the same algorithm as sort.Search().
func search(n int, f func(int) bool) int {
	lo := 0
	for hi := n; lo < hi; {
		if i := int(uint(lo+hi) >> 1); !f(i) {
			lo = i + 1
		} else {
			hi = i
		}
	}
	return lo
}
