// internal/cli/build.go
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/logicalclocks/hopsdist"
	"github.com/logicalclocks/hopsdist/pkg/sdist"
)

var (
	outputDir string
	format    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the source distribution",
	Long: `Load the version, discover packages and write the source distribution.

Examples:
  hopsdist build
  hopsdist build --out /tmp/dist --format zip
  hopsdist --root ../hopsworks-api/python build`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

var sdistCmd = &cobra.Command{
	Use:   "sdist",
	Short: "Build the source distribution (alias of build)",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

func init() {
	for _, cmd := range []*cobra.Command{buildCmd, sdistCmd, installCmd} {
		cmd.Flags().StringVar(&outputDir, "out", "", "output directory (default from config, \"dist\" under --root)")
		cmd.Flags().StringVar(&format, "format", "", fmt.Sprintf("archive format %v", sdist.Formats()))
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	_, artifact, err := build(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), artifact)
	return nil
}

func build(ctx context.Context) (*hopsdist.Descriptor, string, error) {
	b, err := newBuilder()
	if err != nil {
		return nil, "", err
	}

	opts := &hopsdist.SDistOptions{
		OutputDir: config.OutputDir,
		Format:    hopsdist.Format(config.Format),
	}
	// A relative configured directory lives under the project root
	if opts.OutputDir == "" {
		opts.OutputDir = "dist"
	}
	if !filepath.IsAbs(opts.OutputDir) {
		opts.OutputDir = filepath.Join(rootDir, opts.OutputDir)
	}
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	if format != "" {
		opts.Format = hopsdist.Format(format)
	}

	d, artifact, err := b.Build(ctx, opts)
	if err != nil {
		return nil, "", err
	}
	log.Info("built %s %s", d.Name, d.Version)
	return d, artifact, nil
}
