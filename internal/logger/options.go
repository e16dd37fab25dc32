package logger

import (
	"io"
	"os"
)

// Options configures a Logger. Zero values fall back to the defaults used by DefaultOptions.
type Options struct {
	Level       string    // debug, info, warn, error
	Format      string    // json, text
	Output      io.Writer // explicit destination; overrides File
	ServiceName string

	// File enables a rotated log file next to stdout.
	File     string
	FileOnly bool

	// Rotation, passed to lumberjack.
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultOptions returns JSON logs at info level on stdout.
func DefaultOptions() Options {
	return Options{
		Level:       "info",
		Format:      "json",
		Output:      os.Stdout,
		ServiceName: "socialkit",
		MaxSizeMB:   100,
		MaxBackups:  7,
		MaxAgeDays:  30,
		Compress:    true,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Level == "" {
		o.Level = d.Level
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.ServiceName == "" {
		o.ServiceName = d.ServiceName
	}
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = d.MaxSizeMB
	}
	if o.MaxBackups <= 0 {
		o.MaxBackups = d.MaxBackups
	}
	if o.MaxAgeDays <= 0 {
		o.MaxAgeDays = d.MaxAgeDays
	}
	return o
}
