// Package descriptor reads build descriptors from YAML, JSON or HCL.
package descriptor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/frantjc/bvr"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFor infers the Format of the file at name from its extension.
func FormatFor(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	}

	return "", fmt.Errorf("unsupported descriptor extension %q", filepath.Ext(name))
}

// DecodeOpts configure Decode.
type DecodeOpts struct {
	// Filename is used in error messages.
	Filename string
	// Env is exposed to HCL descriptors as `env`.
	Env map[string]string
}

// Decode reads a single descriptor in the given format from r.
// Unknown keys are rejected.
func Decode(r io.Reader, format Format, opts *DecodeOpts) (*bvr.BuildDescriptor, error) {
	if opts == nil {
		opts = &DecodeOpts{}
	}

	d := &bvr.BuildDescriptor{}

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(d); err != nil {
			return nil, fmt.Errorf("decode yaml %s: %w", opts.Filename, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(d); err != nil {
			return nil, fmt.Errorf("decode json %s: %w", opts.Filename, err)
		}
	case FormatHCL:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}

		if d, err = decodeHCL(src, opts.Filename, opts.Env); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported descriptor format %q", format)
	}

	return d, nil
}

// Open reads the descriptor at name, inferring its format from its
// extension. HCL descriptors see the process environment as `env`.
func Open(ctx context.Context, name string) (*bvr.BuildDescriptor, error) {
	log := bvr.LoggerFrom(ctx).WithValues("descriptor", name)

	format, err := FormatFor(name)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}

	log.V(1).Info("decoding descriptor", "format", format)

	d, err := Decode(bytes.NewReader(b), format, &DecodeOpts{
		Filename: name,
		Env:      environ(),
	})
	if err != nil {
		return nil, err
	}

	log.V(1).Info("decoded descriptor", "platform", d.Platform, "variants", len(d.Variants))

	return d, nil
}

func environ() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}

	return env
}
