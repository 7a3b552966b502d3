package android

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frantjc/bvr/apktool"
	"github.com/frantjc/bvr/keytool"
	"gopkg.in/yaml.v3"
)

// APKDecoder reads what an .apk was built with by decoding it with
// apktool and inspecting its signature with keytool.
type APKDecoder struct {
	Name string

	apktool   string
	keytool   string
	dir       string
	framePath string
	tmp       bool
	decoded   bool
	manifest  *Manifest
	metadata  *apktool.Metadata
}

type APKDecoderOpt func(*APKDecoder)

func WithAPKTool(b string) APKDecoderOpt {
	return func(a *APKDecoder) {
		a.apktool = b
	}
}

func WithKeytool(b string) APKDecoderOpt {
	return func(a *APKDecoder) {
		a.keytool = b
	}
}

// WithDir decodes into dir instead of a temporary directory. dir is
// left in place by Close.
func WithDir(dir string) APKDecoderOpt {
	return func(a *APKDecoder) {
		a.dir = dir
	}
}

// WithFramePath points apktool at a framework directory other than its
// default, e.g. one holding a vendor's framework-res.apk.
func WithFramePath(dir string) APKDecoderOpt {
	return func(a *APKDecoder) {
		a.framePath = dir
	}
}

func NewAPKDecoder(name string, opts ...APKDecoderOpt) *APKDecoder {
	ad := &APKDecoder{Name: name, keytool: "keytool", apktool: "apktool"}

	for _, opt := range opts {
		opt(ad)
	}

	return ad
}

func (a *APKDecoder) decode(ctx context.Context) error {
	if a.decoded {
		return nil
	} else if a.dir == "" {
		var err error
		a.dir, err = os.MkdirTemp("", "bvr-apk-*")
		if err != nil {
			return err
		}
		a.tmp = true
	}

	opts := &apktool.DecodeOpts{
		Force:           true,
		NoSources:       true,
		FramePath:       a.framePath,
		OutputDirectory: a.dir,
	}

	if err := apktool.Command(a.apktool).Decode(ctx, a.Name, opts); err != nil {
		return fmt.Errorf("apktool decode %s: %w", a.Name, err)
	}

	a.decoded = true

	return nil
}

// Manifest returns the decoded AndroidManifest.xml of the .apk.
func (a *APKDecoder) Manifest(ctx context.Context) (*Manifest, error) {
	if a.manifest == nil {
		manifest := &Manifest{}
		if err := a.readDecoded(ctx, AndroidManifestName, func(f *os.File) error {
			return xml.NewDecoder(f).Decode(manifest)
		}); err != nil {
			return nil, err
		}

		a.manifest = manifest
	}

	return a.manifest, nil
}

// Metadata returns the apktool.yml that apktool wrote for the .apk.
func (a *APKDecoder) Metadata(ctx context.Context) (*apktool.Metadata, error) {
	if a.metadata == nil {
		metadata := &apktool.Metadata{}
		if err := a.readDecoded(ctx, apktool.MetadataName, func(f *os.File) error {
			return yaml.NewDecoder(f).Decode(metadata)
		}); err != nil {
			return nil, err
		}

		a.metadata = metadata
	}

	return a.metadata, nil
}

// readDecoded decodes the .apk if it has not been already and hands the
// file at rel within the decoded tree to decode.
func (a *APKDecoder) readDecoded(ctx context.Context, rel string, decode func(*os.File) error) error {
	if err := a.decode(ctx); err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(a.dir, rel))
	if err != nil {
		return err
	}
	defer f.Close()

	if err = decode(f); err != nil {
		return fmt.Errorf("decode %s of %s: %w", rel, a.Name, err)
	}

	return nil
}

func (a *APKDecoder) SHA256CertFingerprints(ctx context.Context) (string, error) {
	return keytool.Command(a.keytool).SHA256CertFingerprints(ctx, a.Name)
}

// Close removes the temporary directory the .apk was decoded into.
// The .apk itself is left in place.
func (a *APKDecoder) Close() error {
	if a.tmp {
		if err := os.RemoveAll(a.dir); err != nil {
			return err
		}
		a.dir = ""
		a.tmp = false
	}

	a.decoded = false
	a.metadata = nil
	a.manifest = nil

	return nil
}
