package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Output returns w, or the color-aware stdout when w is nil.
func Output(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}

// Encode writes v to w as "json" or "yaml".
func Encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round trip through JSON so field names match the JSON tags.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := yaml.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("printers: unknown format %q", format)
	}
}
