package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/marklet/pkg/commands/options"
)

var (
	output  = &options.OutputOptions{}
	verbose bool
	logger  = zap.NewNop()
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "marklet",
		Short: base.Wrap80("Save, launch and run bookmarklets in your browser's active tab."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	options.AddOutputArg(cmd, output)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addList(topLevel)
	addShow(topLevel)
	addAdd(topLevel)
	addEdit(topLevel)
	addRemove(topLevel)
	addDuplicate(topLevel)
	addRun(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addSettings(topLevel)
	addBind(topLevel)
	addCommand(topLevel)
	addServe(topLevel)
	addLaunch(topLevel)
	addMCP(topLevel)
	addInfo(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
}
