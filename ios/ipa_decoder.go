package ios

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"howett.net/plist"
)

const (
	InfoPlistName = "Info.plist"
)

// IPADecoder reads the Info.plist of the app bundle inside an .ipa.
type IPADecoder struct {
	Name string

	info *Info
}

func NewIPADecoder(name string) *IPADecoder {
	return &IPADecoder{Name: name}
}

func (i *IPADecoder) Info(_ context.Context) (*Info, error) {
	if i.info != nil {
		return i.info, nil
	}

	zr, err := zip.OpenReader(i.Name)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, zf := range zr.File {
		// Payload/Runner.app/Info.plist, not the Info.plist of an
		// embedded framework or extension.
		if strings.EqualFold(InfoPlistName, path.Base(zf.Name)) && strings.Count(zf.Name, "/") == 2 {
			f, err := zf.Open()
			if err != nil {
				return nil, err
			}
			defer f.Close()

			b, err := io.ReadAll(f)
			if err != nil {
				return nil, err
			}

			info := &Info{}
			if err := plist.NewDecoder(bytes.NewReader(b)).Decode(info); err != nil {
				return nil, err
			}

			i.info = info
			return i.info, nil
		}
	}

	return nil, fmt.Errorf("info not found in .ipa")
}

func (i *IPADecoder) Close() error {
	i.info = nil
	return nil
}
