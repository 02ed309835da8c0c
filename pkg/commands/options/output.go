package options

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
	YAML bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.PersistentFlags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
	cmd.PersistentFlags().BoolVar(&po.YAML, "yaml", false,
		"Output as YAML.")
}

// Format is the structured output format, or "" for pretty output.
func (o *OutputOptions) Format() string {
	switch {
	case o.JSON:
		return "json"
	case o.YAML:
		return "yaml"
	}
	return ""
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
