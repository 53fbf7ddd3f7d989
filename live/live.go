// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/GermanBionicSystems/webiopi"
)

// Defaults of a stock WebIOPi installation.
const (
	DefaultUsername = "webiopi"
	DefaultPassword = "raspberry"
	DefaultTimeout  = 10 * time.Second
)

var (
	ErrUnexpectedBody = errors.New("live: unexpected response body")
	ErrInvalidURL     = errors.New("live: invalid device URL")
)

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// StatusError is returned when the device answers with a non 2xx status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "live: " + e.Status
	}
	return "live: " + e.Status + ": " + e.Body
}

// Opts configures a Dev.
type Opts struct {
	// Username and Password for HTTP Basic authentication. They default to
	// DefaultUsername and DefaultPassword when both are empty.
	Username string
	Password string
	// Client is the HTTP client to use. When nil, a client with Timeout is
	// created.
	Client *http.Client
	// Timeout of each request when Client is nil. Defaults to
	// DefaultTimeout.
	Timeout time.Duration
	// Rate limits the number of requests per second sent to the device.
	// 0 means no limit.
	Rate float64
	// Log receives one debug event per request. Defaults to no logging.
	Log *zerolog.Logger

	_ struct{}
}

// Dev is a WebIOPi device reached over HTTP. It implements webiopi.Endpoint.
type Dev struct {
	base     string
	username string
	password string
	client   *http.Client
	limiter  *rate.Limiter
	log      zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// New returns a Dev for the WebIOPi server at baseURL, e.g.
// "http://raspberrypi:8000". opts may be nil.
func New(baseURL string, opts *Opts) (*Dev, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, baseURL)
	}
	if opts == nil {
		opts = &Opts{}
	}
	if opts.Rate < 0 {
		return nil, fmt.Errorf("live: invalid rate %v", opts.Rate)
	}
	d := &Dev{
		base:     strings.TrimRight(u.String(), "/"),
		username: opts.Username,
		password: opts.Password,
		client:   opts.Client,
		log:      zerolog.Nop(),
	}
	if d.username == "" && d.password == "" {
		d.username = DefaultUsername
		d.password = DefaultPassword
	}
	if d.client == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		d.client = &http.Client{Timeout: timeout}
	}
	if opts.Rate > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	if opts.Log != nil {
		d.log = opts.Log.With().Str("device", d.base).Logger()
	}
	return d, nil
}

func (d *Dev) String() string {
	return "webiopi(" + d.base + ")"
}

// Function implements webiopi.Endpoint.
//
// Tokens other than in, out and pwm map to webiopi.Unknown.
func (d *Dev) Function(ctx context.Context, pin int) (webiopi.Function, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return webiopi.Unknown, err
	}
	body, err := d.do(ctx, http.MethodGet, "function", gpioPath(pin, "function"))
	if err != nil {
		return webiopi.Unknown, err
	}
	return webiopi.ParseFunction(body), nil
}

// SetFunction implements webiopi.Endpoint.
func (d *Dev) SetFunction(ctx context.Context, pin int, f webiopi.Function) (webiopi.Function, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return webiopi.Unknown, err
	}
	token, err := f.Token()
	if err != nil {
		return webiopi.Unknown, err
	}
	body, err := d.do(ctx, http.MethodPost, "set_function", gpioPath(pin, "function", token))
	if err != nil {
		return webiopi.Unknown, err
	}
	return webiopi.ParseFunction(body), nil
}

// Value implements webiopi.Endpoint.
func (d *Dev) Value(ctx context.Context, pin int) (int, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return 0, err
	}
	return d.doInt(ctx, http.MethodGet, "value", gpioPath(pin, "value"))
}

// SetValue implements webiopi.Endpoint.
func (d *Dev) SetValue(ctx context.Context, pin, value int) (int, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return 0, err
	}
	return d.doInt(ctx, http.MethodPost, "set_value", gpioPath(pin, "value", strconv.Itoa(value)))
}

// Pulse implements webiopi.Endpoint.
func (d *Dev) Pulse(ctx context.Context, pin int) (int, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return 0, err
	}
	return d.doInt(ctx, http.MethodPost, "pulse", gpioPath(pin, "pulse")+"/")
}

// PulseRatio implements webiopi.Endpoint.
func (d *Dev) PulseRatio(ctx context.Context, pin int, ratio float64) (string, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return "", err
	}
	if err := webiopi.ValidateRatio(ratio); err != nil {
		return "", err
	}
	return d.do(ctx, http.MethodPost, "pulse_ratio", gpioPath(pin, "pulseRatio", webiopi.FormatRatio(ratio)))
}

// PulseAngle implements webiopi.Endpoint.
func (d *Dev) PulseAngle(ctx context.Context, pin, angle int) (string, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return "", err
	}
	if err := webiopi.ValidateAngle(angle); err != nil {
		return "", err
	}
	return d.do(ctx, http.MethodPost, "pulse_angle", gpioPath(pin, "pulseAngle", strconv.Itoa(angle)))
}

// Sequence implements webiopi.Endpoint.
func (d *Dev) Sequence(ctx context.Context, pin, period int, bits string) (int, error) {
	if err := webiopi.ValidatePin(pin); err != nil {
		return 0, err
	}
	if err := webiopi.ValidateSequence(period, bits); err != nil {
		return 0, err
	}
	return d.doInt(ctx, http.MethodPost, "sequence", gpioPath(pin, "sequence", strconv.Itoa(period)+","+bits))
}

// RunMacro implements webiopi.Endpoint.
//
// Arguments are sent comma separated as "/macros/{name}/{a,b}".
func (d *Dev) RunMacro(ctx context.Context, name string, args ...string) (string, error) {
	if err := webiopi.ValidateMacro(name, args...); err != nil {
		return "", err
	}
	p := "/macros/" + url.PathEscape(name)
	if len(args) != 0 {
		esc := make([]string, len(args))
		for i, a := range args {
			esc[i] = url.PathEscape(a)
		}
		p += "/" + strings.Join(esc, ",")
	}
	return d.do(ctx, http.MethodPost, "macro", p)
}

// RawState implements webiopi.Endpoint.
//
// It returns the body of "GET /*" verbatim.
func (d *Dev) RawState(ctx context.Context) ([]byte, error) {
	body, err := d.do(ctx, http.MethodGet, "state", "/*")
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

// Close implements webiopi.Endpoint.
//
// It releases idle connections. Later calls return webiopi.ErrClosed.
func (d *Dev) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		d.client.CloseIdleConnections()
	}
	return nil
}

//

func gpioPath(pin int, parts ...string) string {
	return "/GPIO/" + strconv.Itoa(pin) + "/" + strings.Join(parts, "/")
}

func (d *Dev) doInt(ctx context.Context, method, op, path string) (int, error) {
	body, err := d.do(ctx, method, op, path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %q", ErrUnexpectedBody, method, path, body)
	}
	return v, nil
}

// do sends one request and returns the response body.
func (d *Dev) do(ctx context.Context, method, op, path string) (string, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return "", webiopi.ErrClosed
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("live: %s %s: %w", method, path, err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, d.base+path, nil)
	if err != nil {
		return "", fmt.Errorf("live: %w", err)
	}
	req.SetBasicAuth(d.username, d.password)

	start := time.Now()
	resp, err := d.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		observe(op, "error", elapsed)
		d.log.Debug().Err(err).Str("method", method).Str("path", path).Dur("elapsed", elapsed).Msg("request failed")
		return "", fmt.Errorf("live: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	observe(op, strconv.Itoa(resp.StatusCode), elapsed)
	if err != nil {
		return "", fmt.Errorf("live: %s %s: reading body: %w", method, path, err)
	}
	d.log.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Dur("elapsed", elapsed).Msg("request")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Warn().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg("device refused request")
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status, Body: strings.TrimSpace(string(b))}
	}
	return string(b), nil
}

var _ webiopi.Endpoint = &Dev{}
var _ fmt.Stringer = &Dev{}
