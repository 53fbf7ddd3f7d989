// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopireg_test

import (
	"context"
	"fmt"
	"log"

	"github.com/GermanBionicSystems/webiopi"
	"github.com/GermanBionicSystems/webiopi/live"
	"github.com/GermanBionicSystems/webiopi/webiopireg"
	"github.com/GermanBionicSystems/webiopi/webiopitest"
)

func Example() {
	// Register a live device and a simulated one.
	if err := webiopireg.Register("garage", []string{"g"}, func() (webiopi.Endpoint, error) {
		return live.New("http://garage.local:8000", nil)
	}); err != nil {
		log.Fatal(err)
	}
	if err := webiopireg.Register("bench", nil, func() (webiopi.Endpoint, error) {
		return webiopitest.New(nil), nil
	}); err != nil {
		log.Fatal(err)
	}
	for _, ref := range webiopireg.All() {
		fmt.Println(ref.Name, ref.Aliases)
	}

	e, err := webiopireg.Open("bench")
	if err != nil {
		log.Fatal(err)
	}
	defer e.Close()
	f, err := e.Function(context.Background(), 4)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(f)
	// Output:
	// bench []
	// garage [g]
	// In
}
