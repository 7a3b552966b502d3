package keytool

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// SHA256CertFingerprints finds `keytool` on the PATH and runs
// Command.SHA256CertFingerprints against it.
func SHA256CertFingerprints(ctx context.Context, name string) (string, error) {
	return Command("keytool").SHA256CertFingerprints(ctx, name)
}

// Command represents the path to an `keytool` executable.
type Command string

func (c Command) String() string {
	return string(c)
}

// SHA256CertFingerprints returns the SHA-256 fingerprint of the
// certificate that signed the .apk or .jar at name.
func (c Command) SHA256CertFingerprints(ctx context.Context, name string) (string, error) {
	return c.sha256(ctx, "-printcert", "-jarfile", name)
}

// KeystoreOpts identify a key within a keystore.
type KeystoreOpts struct {
	StorePassword string
	StoreType     string
	Alias         string
}

// KeystoreSHA256CertFingerprints returns the SHA-256 fingerprint of the
// certificate of the key at opts.Alias within the keystore at name.
func (c Command) KeystoreSHA256CertFingerprints(ctx context.Context, name string, opts *KeystoreOpts) (string, error) {
	args := []string{"-list", "-v", "-keystore", name}

	if opts != nil {
		if opts.StorePassword != "" {
			args = append(args, "-storepass", opts.StorePassword)
		}

		if opts.StoreType != "" {
			args = append(args, "-storetype", opts.StoreType)
		}

		if opts.Alias != "" {
			args = append(args, "-alias", opts.Alias)
		}
	}

	return c.sha256(ctx, args...)
}

func (c Command) sha256(ctx context.Context, args ...string) (string, error) {
	var (
		buf = new(bytes.Buffer)
		//nolint:gosec
		cmd = exec.CommandContext(ctx, c.String(), args...)
	)

	cmd.Stdout = buf

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return ParseSHA256(buf)
}

// ParseSHA256 finds the first "SHA256: " line of keytool's output in r
// and returns the fingerprint on it.
func ParseSHA256(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "SHA256: ") {
			if fields := strings.Fields(line); len(fields) >= 2 {
				return fields[1], nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", fmt.Errorf("sha256 cert fingerprints not found")
}
