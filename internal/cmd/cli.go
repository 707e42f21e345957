// Package cmd holds the kong command tree for the wheelbridge binary.
package cmd

// LogConfig groups the logging flags shared by all commands.
type LogConfig struct {
	Level   string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"WHEELBRIDGE_LOG_LEVEL"`
	File    string `help:"Log file path; empty logs to the console" env:"WHEELBRIDGE_LOG_FILE"`
	RawFile string `help:"Raw report hex-dump log file" env:"WHEELBRIDGE_RAW_LOG_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	ConfigPath string    `name:"config" help:"Path to a configuration file" type:"path"`
	Log        LogConfig `embed:"" prefix:"log."`

	Run     Run           `cmd:"" default:"withargs" help:"Run the wheel bridge"`
	Devices Devices       `cmd:"" help:"List candidate HID devices"`
	Config  ConfigCommand `cmd:"" help:"Configuration utilities"`
}
