// Package serial opens the USB CDC console of a controller
package serial

import (
	"io"
	"time"
)

// Port is the byte stream to a controller console. Besides the native
// port this is satisfied by pipes to a simulated controller in tests.
type Port interface {
	io.ReadWriteCloser

	// Flush discards buffered input and output
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string `help:"Serial device of the controller console" default:"/dev/ttyACM0" env:"SCJINGLE_PORT"`

	// Baud rate. USB CDC ignores it but the OS driver wants one.
	Baud int `help:"Baud rate" default:"115200"`

	// Read timeout, 0 blocks
	ReadTimeout time.Duration `help:"Read timeout of the port" default:"100ms"`
}

// DefaultConfig returns the configuration used for the controller console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}
