package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"infinity/internal/config"
	"infinity/internal/project"
	"infinity/internal/workspace"
)

type options struct {
	configPath  string
	projectRoot string
	debug       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "infinity [document]",
		Short:        "Infinite canvas for notes, code snippets and ink",
		Long:         "infinity is a terminal canvas of notes and code nodes joined by curved connections,\nwith freehand ink, pan/zoom and full undo history saved alongside the document.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var document string
			if len(args) > 0 {
				document = args[0]
			}
			return run(cmd.Context(), opts, document)
		},
	}
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath(), "config file path")
	cmd.Flags().StringVarP(&opts.projectRoot, "project", "p", "", "project root for code nodes")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log at debug level")
	return cmd
}

func run(ctx context.Context, opts *options, document string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, cfgErr := config.Load(opts.configPath)
	if opts.projectRoot != "" {
		root, err := filepath.Abs(opts.projectRoot)
		if err != nil {
			return fmt.Errorf("invalid project root: %w", err)
		}
		cfg.ProjectRoot = root
	}
	if opts.debug {
		cfg.LogLevel = "debug"
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	if cfgErr != nil {
		logger.Warn("using default config", zap.String("path", opts.configPath), zap.Error(cfgErr))
	}

	fs := afs.New()
	ws := workspace.New(workspace.Options{
		Config: cfg,
		Logger: logger,
		FS:     fs,
		Picker: project.PickerFunc(workingDirectory),
	})
	if document != "" {
		location, err := cfg.SavePath(document)
		if err != nil {
			return err
		}
		exists, err := fs.Exists(ctx, location)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", document, err)
		}
		if exists {
			if err := ws.Open(ctx, document); err != nil {
				return err
			}
		}
	}

	m := newUI(ctx, ws, cfg, logger, document)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	m.send = p.Send
	m.ensureWatcher()

	logger.Info("starting", zap.String("document", document), zap.String("project", cfg.ProjectRoot))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

// workingDirectory stands in for a folder dialog: the project is where infinity was started.
func workingDirectory(context.Context) (string, error) {
	return os.Getwd()
}

// newLogger writes to a file; the terminal belongs to the UI.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogLevel == "debug" {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{cfg.LogPath()}
	zc.ErrorOutputPaths = []string{cfg.LogPath()}
	return zc.Build()
}
