package apktool

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Decode finds `apktool` on the PATH and runs Decode against it.
// See Command.Decode.
func Decode(ctx context.Context, name string, opts *DecodeOpts) error {
	return Command("apktool").Decode(ctx, name, opts)
}

// Command represents the path to an `apktool` executable.
type Command string

func (c Command) String() string {
	return string(c)
}

// DecodeOpts represent flags that can be passed to `apktool decode`.
type DecodeOpts struct {
	Force           bool
	NoResources     bool
	NoSources       bool
	FramePath       string
	OutputDirectory string
}

// Decode executes `apktool decode` against the .apk at name with flags
// derived from the given DecodeOpts. The decoded tree contains
// AndroidManifest.xml and apktool.yml.
func (c Command) Decode(ctx context.Context, name string, opts *DecodeOpts) error {
	args := []string{"decode"}

	if opts != nil {
		if opts.Force {
			args = append(args, "--force")
		}

		if opts.NoResources {
			args = append(args, "--no-res")
		}

		if opts.NoSources {
			args = append(args, "--no-src")
		}

		if opts.FramePath != "" {
			args = append(args, "--frame-path", opts.FramePath)
		}

		if opts.OutputDirectory != "" {
			args = append(args, "--output", opts.OutputDirectory)
		}
	}

	args = append(args, name)

	//nolint:gosec
	return exec.CommandContext(ctx, c.String(), args...).Run()
}

// Version returns the output of `apktool --version`.
func (c Command) Version(ctx context.Context) (string, error) {
	var (
		buf = new(bytes.Buffer)
		//nolint:gosec
		cmd = exec.CommandContext(ctx, c.String(), "--version")
	)

	cmd.Stdout = buf

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return strings.TrimSpace(buf.String()), nil
}
