// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// webiopi controls Raspberry Pi pins through a WebIOPi server.
//
// Devices are described in a TOML file, see Config. --url addresses a single
// device without a configuration file.
//
// Examples:
//
//	webiopi --url http://raspberrypi:8000 status
//	webiopi -d garage value 17 1
//	webiopi -d garage watch --interval 500ms
//	webiopi serve --addr :8000
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/GermanBionicSystems/webiopi/live"
)

const (
	projectName = "webiopi"
	// cliDevice is the name given to the device addressed with --url.
	cliDevice = "cli"
)

var projectVersion = "dev"

func main() {
	var levelFlag string
	var configFlag string
	var deviceFlag string
	var urlFlag string
	var userFlag string
	var passwordFlag string
	var timeoutFlag time.Duration
	var rateFlag float64
	var intervalFlag time.Duration
	var addrFlag string
	var pinsFlag bool
	var versionFlag bool

	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVarP(&configFlag, "config", "c", "", "Configuration file (default "+DefaultConfigFile+" if present)")
	pflag.StringVarP(&deviceFlag, "device", "d", "", "Name or alias of the device to use")
	pflag.StringVar(&urlFlag, "url", "", "URL of the WebIOPi server, e.g. http://raspberrypi:8000")
	pflag.StringVar(&userFlag, "user", live.DefaultUsername, "HTTP Basic authentication user name")
	pflag.StringVar(&passwordFlag, "password", live.DefaultPassword, "HTTP Basic authentication password")
	pflag.DurationVar(&timeoutFlag, "timeout", live.DefaultTimeout, "Timeout of each request sent with --url")
	pflag.Float64Var(&rateFlag, "rate", 0, "Maximum number of requests per second sent with --url, 0 for no limit")
	pflag.DurationVar(&intervalFlag, "interval", time.Second, "Polling interval of watch and mirror")
	pflag.StringVar(&addrFlag, "addr", ":8000", "Address serve listens on")
	pflag.BoolVar(&pinsFlag, "pins", false, "status: print every pin")
	pflag.BoolVar(&versionFlag, "version", false, "Print the version and exit")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <command> [args]\n\n%s\nflags:\n", projectName, commandsHelp)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if versionFlag {
		fmt.Printf("%s %s\n", projectName, projectVersion)
		return
	}
	level, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level %q: %v\n", levelFlag, err)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)

	cfg, err := LoadConfig(configFlag)
	if err != nil {
		Exitf("Failed to load configuration: %v\n", err)
	}
	if urlFlag != "" {
		cfg.Devices[cliDevice] = DeviceConfig{
			URL:      urlFlag,
			Username: userFlag,
			Password: passwordFlag,
			Timeout:  timeoutFlag,
			Rate:     rateFlag,
		}
		if err := cfg.Validate(); err != nil {
			Exitf("Invalid --url: %v\n", err)
		}
		deviceFlag = cliDevice
	}
	if deviceFlag == "" {
		deviceFlag = cfg.Default
	}
	if err := cfg.Register(logger); err != nil {
		Exitf("Failed to register devices: %v\n", err)
	}

	// Prepare to shutdown in a controlled manner
	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	r := &runner{
		log:      logger,
		out:      os.Stdout,
		device:   deviceFlag,
		interval: intervalFlag,
		addr:     addrFlag,
		user:     userFlag,
		password: passwordFlag,
		allPins:  pinsFlag,
	}
	if err := r.run(ctx, pflag.Args()); err != nil {
		if err == errUsage {
			pflag.Usage()
			os.Exit(2)
		}
		Exitf("%s: %v\n", projectName, err)
	}
}

// Exitf prints the given error message and exits with code 1.
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
