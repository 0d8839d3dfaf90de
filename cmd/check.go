package cmd

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cottand/luatic/frontend/lerr"
	"github.com/cottand/luatic/internal/log"
	"github.com/cottand/luatic/luatic"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var CheckCmd = &cobra.Command{
	Use:          "check ./folder|file.lua",
	Short:        "Type-check a Lua program",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	checkFeatures *[]string
	checkLogLevel *int
	packagePath   *string
	packageCpath  *string
	noBuiltins    *bool
	configPath    *string
)

func init() {
	checkFeatures = CheckCmd.Flags().StringArray("feature", nil, "enable a named feature (repeatable)")
	checkLogLevel = CheckCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	packagePath = CheckCmd.Flags().String("package-path", "", "initial package.path search template")
	packageCpath = CheckCmd.Flags().String("package-cpath", "", "initial package.cpath search template")
	noBuiltins = CheckCmd.Flags().Bool("no-builtins", false, "do not preload the lua51 declarations")
	configPath = CheckCmd.Flags().String("config", "", "workspace config file (default luatic.yaml next to the target)")
}

// workspaceConfig mirrors luatic.yaml. Flags win over file values.
type workspaceConfig struct {
	Root         string   `yaml:"root"`
	PackagePath  string   `yaml:"package_path"`
	PackageCpath string   `yaml:"package_cpath"`
	Features     []string `yaml:"features"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*checkLogLevel))

	target, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("could not get absolute path of target: %w", err)
	}

	stat, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("could not stat target: %w", err)
	}

	var folderFS fs.FS
	var root string
	if stat.IsDir() {
		folderFS = os.DirFS(target)
	} else {
		folderFS = os.DirFS(filepath.Dir(target))
		root = filepath.Base(target)
	}

	conf, err := loadWorkspaceConfig(*configPath, folderFS)
	if err != nil {
		return err
	}

	settings := luatic.Settings{
		Root:         root,
		PackagePath:  conf.PackagePath,
		PackageCpath: conf.PackageCpath,
		NoBuiltins:   *noBuiltins,
	}
	if settings.Root == "" {
		settings.Root = conf.Root
	}
	if *packagePath != "" {
		settings.PackagePath = *packagePath
	}
	if *packageCpath != "" {
		settings.PackageCpath = *packageCpath
	}
	for _, name := range append(conf.Features, *checkFeatures...) {
		if err := settings.Features.Set(name); err != nil {
			return err
		}
	}

	sess, err := luatic.LoadProgram(folderFS, settings)
	if err != nil {
		return fmt.Errorf("could not load program (this is a bug and not a compile error): %w", err)
	}

	renderer := lerr.NewConsoleRenderer(sess.FileSet())
	if worst := renderer.RenderAll(sess.Errors()); worst >= lerr.Error {
		return fmt.Errorf("%d problem(s) found", countErrors(sess.Errors()))
	}
	return nil
}

func countErrors(errs *lerr.Errors) int {
	n := 0
	for _, e := range errs.Errors() {
		if lerr.SeverityOf(e.Code()) >= lerr.Error {
			n++
		}
	}
	return n
}

// loadWorkspaceConfig reads the explicit config file when given, and
// otherwise looks for luatic.yaml next to the target. A missing implicit
// file is not an error.
func loadWorkspaceConfig(explicit string, folderFS fs.FS) (workspaceConfig, error) {
	var conf workspaceConfig
	var data []byte
	var err error
	switch {
	case explicit != "":
		data, err = os.ReadFile(explicit)
		if err != nil {
			return conf, fmt.Errorf("could not read config %s: %w", explicit, err)
		}
	default:
		data, err = fs.ReadFile(folderFS, "luatic.yaml")
		if err != nil {
			return conf, nil
		}
	}
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("could not parse workspace config: %w", err)
	}
	return conf, nil
}
