// internal/cli/packages.go
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List discovered packages",
	Long:  `List every importable package below the project root, as it will be shipped.`,
	Args:  cobra.NoArgs,
	RunE:  runPackages,
}

func runPackages(cmd *cobra.Command, args []string) error {
	b, err := newBuilder()
	if err != nil {
		return err
	}

	pkgs, err := b.DiscoverPackages()
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box.MiddleHorizontal = "─"

	t.AppendHeader(table.Row{"#", "Package", "Directory"})
	sorted := pkgs.Sorted()
	for i, pkg := range sorted {
		dir := filepath.Join(rootDir, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
		t.AppendRow(table.Row{i + 1, pkg, dir})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"", fmt.Sprintf("%d packages", len(sorted)), ""})

	t.Render()
	return nil
}
