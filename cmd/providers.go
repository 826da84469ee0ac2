package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tanq16/forgemods/internal/config"
	"github.com/tanq16/forgemods/internal/downloaders/curseforge"
	"github.com/tanq16/forgemods/internal/downloaders/modrinth"
	"github.com/tanq16/forgemods/internal/output"
	"github.com/tanq16/forgemods/internal/utils"
)

// buildProviders returns the providers in the order they are tried. Each gets
// its own client so CurseForge auth headers never reach Modrinth.
func buildProviders(cfg config.Config) []utils.Provider {
	return []utils.Provider{
		modrinth.New(cfg.ModrinthConfig(), utils.NewModHTTPClient(cfg.HTTPClientConfig())),
		curseforge.New(cfg.CurseForgeConfig(), utils.NewModHTTPClient(cfg.HTTPClientConfig())),
	}
}

// selectManifest lists manifest candidates in dir and reads a choice from in.
// An empty path with a nil error means the user quit.
func selectManifest(dir string, in io.Reader) (string, error) {
	output.PrintHeader(programName)
	files, err := utils.FindManifests(dir)
	if err != nil {
		return "", fmt.Errorf("error listing %s: %w", dir, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no .json, .yaml or .txt mod list found in %s", dir)
	}
	rows := make([][]string, len(files))
	for i, f := range files {
		rows[i] = []string{strconv.Itoa(i + 1), f}
	}
	fmt.Println(output.RenderTable([]string{"#", "Mod list"}, rows))
	fmt.Println("Enter a number and press Enter, or 'q' to quit.")

	reader := bufio.NewReader(in)
	for {
		fmt.Print("Your choice: ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" && err != nil {
			return "", nil
		}
		if strings.EqualFold(input, "q") {
			return "", nil
		}
		selection, convErr := strconv.Atoi(input)
		switch {
		case convErr != nil:
			output.PrintError("Please enter a valid number.")
		case selection < 1 || selection > len(files):
			output.PrintError("Invalid number, try again.")
		default:
			output.PrintSuccess("Selected " + files[selection-1])
			return files[selection-1], nil
		}
		if err != nil {
			return "", nil
		}
	}
}
