package command

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/frantjc/bvr"
	"github.com/frantjc/bvr/android"
	"github.com/frantjc/bvr/apktool"
	"github.com/frantjc/bvr/ios"
	"gopkg.in/yaml.v3"
	"howett.net/plist"
)

const (
	OutputJSON     = "json"
	OutputYAML     = "yaml"
	OutputPlist    = "plist"
	OutputManifest = "manifest"
	OutputAPKTool  = "apktool"
)

var outputs = []string{OutputJSON, OutputYAML, OutputPlist, OutputManifest, OutputAPKTool}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func encodeYAML(w io.Writer, vs ...any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	for _, v := range vs {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}

	return enc.Close()
}

// encodePlans writes plans to w in the given output format. Formats that
// render a platform file accept exactly one plan.
func encodePlans(w io.Writer, output string, plans []*bvr.ResolvedBuildPlan) error {
	switch output {
	case OutputJSON, "":
		if len(plans) == 1 {
			return encodeJSON(w, plans[0])
		}

		return encodeJSON(w, plans)
	case OutputYAML:
		vs := make([]any, len(plans))
		for i, plan := range plans {
			vs[i] = plan
		}

		return encodeYAML(w, vs...)
	}

	if len(plans) != 1 {
		return fmt.Errorf("output %s requires exactly one variant, got %d", output, len(plans))
	}
	plan := plans[0]

	switch output {
	case OutputPlist:
		info, err := ios.InfoFromPlan(plan)
		if err != nil {
			return err
		}

		enc := plist.NewEncoder(w)
		enc.Indent("\t")
		if err := enc.Encode(info); err != nil {
			return err
		}

		_, err = fmt.Fprintln(w)
		return err
	case OutputManifest:
		manifest, err := android.ManifestFromPlan(plan)
		if err != nil {
			return err
		}

		if _, err = io.WriteString(w, xml.Header); err != nil {
			return err
		}

		enc := xml.NewEncoder(w)
		enc.Indent("", "    ")
		if err := enc.Encode(manifest); err != nil {
			return err
		}

		_, err = fmt.Fprintln(w)
		return err
	case OutputAPKTool:
		metadata, err := apktool.MetadataFromPlan(plan)
		if err != nil {
			return err
		}

		return encodeYAML(w, metadata)
	}

	return fmt.Errorf("unsupported output %q, expected one of %v", output, outputs)
}
