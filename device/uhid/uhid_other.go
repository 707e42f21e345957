//go:build !linux

package uhid

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openffb/wheelbridge/config"
)

var errUnsupported = errors.New("uhid: virtual wheel requires Linux")

// Device is unavailable on this platform; virtual wheel creation uses a
// different native mechanism selected at startup.
type Device struct{}

// Create always fails on non-Linux platforms.
func Create(config.EmulatedConfig, *slog.Logger) (*Device, error) {
	return nil, errUnsupported
}

func (*Device) SendInput([]byte) error { return errUnsupported }

func (*Device) ReadOutput(context.Context) ([]byte, error) { return nil, errUnsupported }

func (*Device) Close() error { return nil }
