package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tanq16/forgemods/internal/output"
	"github.com/tanq16/forgemods/internal/utils"
)

func newResolveCmd() *cobra.Command {
	var filename string

	cmd := &cobra.Command{
		Use:   "resolve [MOD_NAME] [--game-version VERSION]",
		Short: "Show which file each provider would download for a mod",
		Long: `Query every provider for a mod without downloading anything.

Examples:
  forgemods resolve JEI -g 1.20.1
  forgemods resolve "Applied Energistics 2" --filename appliedenergistics2-forge-15.2.1.jar`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				output.PrintError(err.Error())
				exitRun(1)
			}
			version := gameVersion
			if version == "" {
				version = cfg.Download.DefaultGameVersion
			}
			mod := utils.ModDescriptor{Name: args[0], Filename: filename}
			rows := resolveAll(cmd.Context(), buildProviders(cfg), mod, version)
			output.PrintHeader(fmt.Sprintf("%s for MC %s", mod.Name, version))
			fmt.Println(output.RenderTable([]string{"Provider", "Outcome", "File", "Size", "URL"}, rows))
		},
	}

	cmd.Flags().StringVarP(&filename, "filename", "f", "", "Expected file name (used to pick among CurseForge files)")
	return cmd
}

func resolveAll(ctx context.Context, providers []utils.Provider, mod utils.ModDescriptor, version string) [][]string {
	if ctx == nil {
		ctx = context.Background()
	}
	rows := make([][]string, 0, len(providers))
	for _, p := range providers {
		ref, err := p.Resolve(ctx, mod, version)
		switch {
		case err == nil:
			size := ""
			if ref.Size > 0 {
				size = humanize.Bytes(uint64(ref.Size))
			}
			rows = append(rows, []string{p.Name(), output.FSuccess("found"), ref.FileName, size, ref.URL})
		case errors.Is(err, utils.ErrNotFound):
			rows = append(rows, []string{p.Name(), output.FWarning("not found"), "", "", err.Error()})
		default:
			rows = append(rows, []string{p.Name(), output.FError("error"), "", "", err.Error()})
		}
	}
	return rows
}
