package bvr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Version is a dotted numeric version such as an SDK level ("34"),
// an OS version ("17.0") or a Java compatibility level ("1.8").
// Versions compare component-wise with missing components treated as 0.
type Version string

func (v Version) String() string {
	return string(v)
}

func (v Version) segments() ([]int, error) {
	if v == "" {
		return nil, fmt.Errorf("empty version")
	}

	parts := strings.Split(string(v), ".")
	if len(parts) > 4 {
		return nil, fmt.Errorf("version %s has more than 4 components", v)
	}

	segments := make([]int, len(parts))
	for i, part := range parts {
		if part == "" || strings.IndexFunc(part, isNotDigit) >= 0 || (len(part) > 1 && part[0] == '0') {
			return nil, fmt.Errorf("version component %q is not a non-negative integer", part)
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("version component %q: %w", part, err)
		}
		segments[i] = n
	}

	return segments, nil
}

func isNotDigit(r rune) bool {
	return r < '0' || r > '9'
}

// Valid reports whether v is a well-formed Version.
func (v Version) Valid() bool {
	_, err := v.segments()
	return err == nil
}

// Compare returns -1, 0 or 1 as v is less than, equal to or greater than w.
func (v Version) Compare(w Version) (int, error) {
	vs, err := v.segments()
	if err != nil {
		return 0, err
	}

	ws, err := w.segments()
	if err != nil {
		return 0, err
	}

	for i := 0; i < max(len(vs), len(ws)); i++ {
		var a, b int
		if i < len(vs) {
			a = vs[i]
		}
		if i < len(ws) {
			b = ws[i]
		}

		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
	}

	return 0, nil
}

// Major returns the first component of v, or 0 if v is invalid.
func (v Version) Major() int {
	segments, err := v.segments()
	if err != nil {
		return 0
	}

	return segments[0]
}

// JavaLevel normalizes the legacy "1.N" spelling of Java levels 1.1
// through 1.8 to "N" so that "1.8" and "8" compare equal.
func (v Version) JavaLevel() Version {
	segments, err := v.segments()
	if err != nil || len(segments) < 2 || segments[0] != 1 {
		return v
	}

	parts := make([]string, len(segments)-1)
	for i, s := range segments[1:] {
		parts[i] = strconv.Itoa(s)
	}

	return Version(strings.Join(parts, "."))
}

// UnmarshalYAML accepts both `minSdk: 29` and `minSdk: "29"`.
func (v *Version) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: version must be a scalar", value.Line)
	}

	*v = Version(value.Value)
	return nil
}

// UnmarshalJSON accepts both numbers and strings.
func (v *Version) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(b, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*v = Version(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("version must be a number or string: %w", err)
	}

	*v = Version(n.String())
	return nil
}
