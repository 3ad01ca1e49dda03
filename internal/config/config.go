// Package config loads an optional on-disk overlay for the façade's
// Options. A config file is never required: every field left unset in the
// file keeps whatever the caller's functional options (or the built-in
// defaults) already established.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// File is the on-disk shape of an fps.toml overlay. Every field is a
// pointer so an absent key in the file is distinguishable from an
// explicit zero value.
type File struct {
	TmpDir         *string `toml:"tmp_dir"`
	ExePath        *string `toml:"exe_path"`
	TimeoutSeconds *int64  `toml:"timeout_seconds"`
	CollectVerbose *bool   `toml:"collect_verbose"`
	CollectDebug   *bool   `toml:"collect_debug"`
}

// Load reads and decodes a TOML config file. A missing file is not an
// error; it returns a zero File so callers can apply it unconditionally.
func Load(path string) (File, error) {
	if path == "" {
		return File{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return File{}, nil
	}

	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return File{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return f, nil
}

// Overlay describes the subset of Options a File can override, kept free
// of any dependency on the root package to avoid an import cycle.
type Overlay struct {
	TmpDir         string
	ExePath        string
	Timeout        time.Duration
	CollectVerbose bool
	CollectDebug   bool
	HasTmpDir      bool
	HasExePath     bool
	HasTimeout     bool
	HasVerbose     bool
	HasDebug       bool
}

// ToOverlay flattens the pointer fields of File into an Overlay the caller
// can apply field by field.
func (f File) ToOverlay() Overlay {
	var o Overlay
	if f.TmpDir != nil {
		o.TmpDir, o.HasTmpDir = *f.TmpDir, true
	}
	if f.ExePath != nil {
		o.ExePath, o.HasExePath = *f.ExePath, true
	}
	if f.TimeoutSeconds != nil {
		o.Timeout, o.HasTimeout = time.Duration(*f.TimeoutSeconds)*time.Second, true
	}
	if f.CollectVerbose != nil {
		o.CollectVerbose, o.HasVerbose = *f.CollectVerbose, true
	}
	if f.CollectDebug != nil {
		o.CollectDebug, o.HasDebug = *f.CollectDebug, true
	}
	return o
}
