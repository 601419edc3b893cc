package common

import (
	"fmt"
	"io"
)

// A Context bundles the ambient dependencies every long-lived component
// in this driver needs: configuration, a namespaced logger, and a Control
// that ties the component's lifecycle to its parent's.
type Context interface {
	io.Closer

	Config() Config
	Logger() Logger
	Control() Control

	// Sub derives a child context whose logger is namespaced with the
	// given (printf-style) name and whose Control is a child of this
	// context's Control: closing the parent closes every descendant.
	Sub(format string, args ...interface{}) Context
}

type context struct {
	config Config
	logger Logger
	ctrl   Control
}

func NewContext(config Config) Context {
	return &context{config: config, logger: NewStandardLogger(config), ctrl: NewControl(nil)}
}

func NewEmptyContext() Context {
	return NewContext(NewEmptyConfig())
}

func (c *context) Close() error {
	return c.ctrl.Close()
}

func (c *context) Config() Config {
	return c.config
}

func (c *context) Logger() Logger {
	return c.logger
}

func (c *context) Control() Control {
	return c.ctrl
}

func (c *context) Sub(format string, args ...interface{}) Context {
	name := fmt.Sprintf(format, args...)
	return &context{
		config: c.config,
		logger: FormatLogger(c.logger, namedFormat(name)),
		ctrl:   c.ctrl.Sub(),
	}
}

type namedFormat string

func (n namedFormat) String() string {
	return string(n)
}
