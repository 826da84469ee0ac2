package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/forgemods/internal/output"
	"github.com/tanq16/forgemods/internal/utils"
)

func newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove partial downloads left in the download directory",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				output.PrintError(err.Error())
				exitRun(1)
			}
			dir := cfg.Download.Dir
			if len(args) > 0 {
				dir = args[0]
			}
			removed, err := utils.Clean(dir)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning %s: %v", dir, err))
				exitRun(1)
			}
			if removed == 0 {
				output.PrintInfo(fmt.Sprintf("No partial downloads in %s", dir))
				return
			}
			output.PrintSuccess(fmt.Sprintf("Removed %d partial file(s) from %s", removed, dir))
		},
	}
}
