package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	tea "github.com/charmbracelet/bubbletea"

	"emojicode/internal/diagfmt"
	"emojicode/internal/driver"
	"emojicode/internal/project"
	"emojicode/internal/ui"
)

var checkUI bool

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Type-check the package in dir and record its interface",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		colorFlag, _ := cmd.Flags().GetString("color")
		quiet, _ := cmd.Flags().GetBool("quiet")
		maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")

		cache, err := driver.OpenInterfaceCache("emojicodec")
		if err != nil {
			cache = nil // кеш необязателен; проверка работает и без него
		}
		opts := driver.Options{
			MaxDiagnostics: maxDiagnostics,
			Cache:          cache,
		}

		var res *driver.Result
		if checkUI && isTerminal(os.Stdout) {
			res, err = runCheckWithUI(cmd, dir, opts)
		} else {
			res, err = driver.Run(cmd.Context(), dir, opts)
		}
		if err != nil {
			return err
		}

		renderer := diagfmt.NewRenderer(res.FileSet, diagfmt.ParseColorMode(colorFlag), os.Stderr)
		renderer.Render(os.Stderr, res.Bag)

		if res.Bag.HasErrors() {
			os.Exit(1)
		}
		if !quiet && res.Manifest != nil {
			fmt.Printf("checked %s (%d functions lowered)\n",
				res.Manifest.Config.Package.Name, len(res.Funcs))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkUI, "ui", false, "render progress interactively")
}

type checkOutcome struct {
	result *driver.Result
	err    error
}

func runCheckWithUI(cmd *cobra.Command, dir string, opts driver.Options) (*driver.Result, error) {
	manifest, ok, err := project.LoadManifest(dir)
	var files []string
	if err == nil && ok {
		files, _ = project.DiscoverSources(manifest.SourceDir())
	}

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Events = events
		res, runErr := driver.Run(cmd.Context(), dir, optsCopy)
		outcomeCh <- checkOutcome{result: res, err: runErr}
	}()

	model := ui.NewProgressModel("checking "+dir, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
