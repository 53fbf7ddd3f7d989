// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package webiopitest

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/GermanBionicSystems/webiopi"
)

// ServerOpts configures a Server.
type ServerOpts struct {
	// Username and Password enable HTTP Basic authentication when Username is
	// not empty.
	Username string
	Password string

	_ struct{}
}

// Server serves the WebIOPi REST API on top of any webiopi.Endpoint.
//
// Routes:
//
//	GET  /*                                  status document
//	GET  /GPIO/{n}/function                  IN, OUT, PWM or UNKNOWN
//	POST /GPIO/{n}/function/{in|out|pwm}
//	GET  /GPIO/{n}/value
//	POST /GPIO/{n}/value/{v}
//	POST /GPIO/{n}/pulse/
//	POST /GPIO/{n}/pulseRatio/{ratio}
//	POST /GPIO/{n}/pulseAngle/{angle}
//	POST /GPIO/{n}/sequence/{period},{bits}
//	POST /macros/{name}[/{arg,arg...}]
//
// Unknown pins answer 404, invalid arguments 400.
type Server struct {
	ep webiopi.Endpoint
	e  *echo.Echo
}

// NewServer returns a Server for ep. opts may be nil.
func NewServer(ep webiopi.Endpoint, opts *ServerOpts) *Server {
	s := &Server{ep: ep, e: echo.New()}
	s.e.HideBanner = true
	s.e.HidePort = true
	if opts != nil && opts.Username != "" {
		user, pass := []byte(opts.Username), []byte(opts.Password)
		s.e.Use(middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
			Realm: "webiopi",
			Validator: func(u, p string, _ echo.Context) (bool, error) {
				ok := subtle.ConstantTimeCompare([]byte(u), user) == 1
				ok = subtle.ConstantTimeCompare([]byte(p), pass) == 1 && ok
				return ok, nil
			},
		}))
	}
	s.e.GET("/*", s.handleState)
	g := s.e.Group("/GPIO/:pin")
	g.GET("/function", s.handleGetFunction)
	g.POST("/function/:function", s.handleSetFunction)
	g.GET("/value", s.handleGetValue)
	g.POST("/value/:value", s.handleSetValue)
	g.POST("/pulse", s.handlePulse)
	g.POST("/pulse/", s.handlePulse)
	g.POST("/pulseRatio/:ratio", s.handlePulseRatio)
	g.POST("/pulseAngle/:angle", s.handlePulseAngle)
	g.POST("/sequence/:args", s.handleSequence)
	s.e.POST("/macros/:name", s.handleMacro)
	s.e.POST("/macros/:name/:args", s.handleMacro)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Echo returns the underlying router, e.g. to add routes such as /metrics.
func (s *Server) Echo() *echo.Echo {
	return s.e
}

func (s *Server) handleState(c echo.Context) error {
	if p := c.Request().URL.Path; p != "/*" && p != "/GPIO/*" {
		return echo.ErrNotFound
	}
	raw, err := s.ep.RawState(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, raw)
}

func (s *Server) handleGetFunction(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	f, err := s.ep.Function(c.Request().Context(), pin)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, functionBody(f))
}

func (s *Server) handleSetFunction(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	f := webiopi.ParseFunction(c.Param("function"))
	got, err := s.ep.SetFunction(c.Request().Context(), pin, f)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, functionBody(got))
}

func (s *Server) handleGetValue(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	v, err := s.ep.Value(c.Request().Context(), pin)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(v))
}

func (s *Server) handleSetValue(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	value, err := intParam(c, "value")
	if err != nil {
		return err
	}
	v, err := s.ep.SetValue(c.Request().Context(), pin, value)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(v))
}

func (s *Server) handlePulse(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	v, err := s.ep.Pulse(c.Request().Context(), pin)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(v))
}

func (s *Server) handlePulseRatio(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	ratio, err := strconv.ParseFloat(c.Param("ratio"), 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad ratio "+strconv.Quote(c.Param("ratio")))
	}
	out, err := s.ep.PulseRatio(c.Request().Context(), pin, ratio)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, out)
}

func (s *Server) handlePulseAngle(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	angle, err := intParam(c, "angle")
	if err != nil {
		return err
	}
	out, err := s.ep.PulseAngle(c.Request().Context(), pin, angle)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, out)
}

func (s *Server) handleSequence(c echo.Context) error {
	pin, err := intParam(c, "pin")
	if err != nil {
		return err
	}
	period, bits, ok := strings.Cut(c.Param("args"), ",")
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "expected {period},{bits}")
	}
	p, err := strconv.Atoi(period)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bad period "+strconv.Quote(period))
	}
	v, err := s.ep.Sequence(c.Request().Context(), pin, p, bits)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, strconv.Itoa(v))
}

func (s *Server) handleMacro(c echo.Context) error {
	var args []string
	if a := c.Param("args"); a != "" {
		args = strings.Split(a, ",")
	}
	out, err := s.ep.RunMacro(c.Request().Context(), c.Param("name"), args...)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, out)
}

//

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "bad "+name+" "+strconv.Quote(c.Param(name)))
	}
	return v, nil
}

func functionBody(f webiopi.Function) string {
	if t, err := f.Token(); err == nil {
		return strings.ToUpper(t)
	}
	return "UNKNOWN"
}

// httpError maps endpoint errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, webiopi.ErrPinNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, webiopi.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, webiopi.ErrClosed):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
