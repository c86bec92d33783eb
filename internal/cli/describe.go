// internal/cli/describe.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/logicalclocks/hopsdist"
	"github.com/logicalclocks/hopsdist/pkg/metadata"
)

var describeOutput string

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the package descriptor",
	Long: `Assemble the package descriptor without writing anything and print it.

Output formats: yaml (default), json, pkg-info, table.`,
	Args: cobra.NoArgs,
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().StringVarP(&describeOutput, "output", "o", "yaml", "output format (yaml, json, pkg-info, table)")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	b, err := newBuilder()
	if err != nil {
		return err
	}

	d, err := b.BuildDescriptor()
	if err != nil {
		return err
	}

	if describeOutput == "table" {
		renderDescriptor(cmd.OutOrStdout(), d)
		return nil
	}

	data, err := metadata.Marshal(d, describeOutput)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func renderDescriptor(w io.Writer, d *hopsdist.Descriptor) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false

	t.AppendRow(table.Row{"Name", d.Name})
	t.AppendRow(table.Row{"Version", d.Version})
	if d.Revision != "" {
		t.AppendRow(table.Row{"Revision", d.Revision})
	}
	t.AppendRow(table.Row{"License", d.License})
	t.AppendRow(table.Row{"Packages", len(d.Packages)})
	t.AppendSeparator()

	for _, req := range d.Dependencies {
		t.AppendRow(table.Row{"Requires", req.String()})
	}
	for _, extra := range d.ExtraNames() {
		reqs := make([]string, 0, len(d.ExtraRequirements(extra)))
		for _, req := range d.ExtraRequirements(extra) {
			reqs = append(reqs, req.String())
		}
		t.AppendRow(table.Row{fmt.Sprintf("Extra [%s]", extra), strings.Join(reqs, ", ")})
	}

	t.Render()
}
