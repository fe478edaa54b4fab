/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/easymvc/mailcomposer/pkg/config"
	"github.com/easymvc/mailcomposer/pkg/mail"
	"github.com/easymvc/mailcomposer/pkg/metrics"
	"github.com/easymvc/mailcomposer/pkg/system"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	Input        io.Reader
	// Environment is the ambient profile read by --from-env. Nil means the
	// process environment.
	Environment config.Environment
	// ComposerOptions are appended to the options of every composer the
	// commands build.
	ComposerOptions []mail.ComposerOption
}

type runtimeState struct {
	configPath      string
	fromEnv         bool
	envFile         string
	debug           bool
	metricsTextfile string
	cfg             *config.Config
	env             config.Environment
	composerOpts    []mail.ComposerOption
	writer          io.Writer
	reader          io.Reader
	log             *zap.SugaredLogger
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		OutputWriter: os.Stdout,
		Input:        os.Stdin,
		Environment:  config.OSEnvironment(),
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath:   cfg.ConfigPath,
		env:          cfg.Environment,
		composerOpts: cfg.ComposerOptions,
		writer:       cfg.OutputWriter,
		reader:       cfg.Input,
	}

	root := &cobra.Command{
		Use:          "mailctl",
		Short:        "Compose and send email through SMTP or sendmail",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.reader == nil {
				rt.reader = os.Stdin
			}
			if rt.env == nil {
				rt.env = config.OSEnvironment()
			}
			if !rt.debug {
				rt.debug = strings.EqualFold(os.Getenv("MAILCTL_DEBUG"), "true")
			}

			logger, err := system.NewLogger(rt.debug)
			if err != nil {
				return err
			}
			rt.log = logger.Sugar().Named("mailctl")

			// Skip config loading for commands that don't need it
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return rt.EnsureConfigLoaded()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if rt.log != nil {
				_ = rt.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file (default $"+config.ConfigPathEnv+" or "+config.DefaultConfigPath+")")
	root.PersistentFlags().BoolVar(&rt.fromEnv, "from-env", false, "Overlay the ambient EMAIL_* environment onto the config file")
	root.PersistentFlags().StringVar(&rt.envFile, "env-file", "", "Read the ambient environment from a .env file as well (implies --from-env)")
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable development logging")
	root.PersistentFlags().StringVar(&rt.metricsTextfile, "metrics-textfile", "", "Write Prometheus counters to this file after the command")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewSendCommand(),
		NewRenderCommand(),
		NewConfigCommand(),
		NewPasswordCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) Logger() *zap.SugaredLogger {
	if rt.log != nil {
		return rt.log
	}
	return zap.NewNop().Sugar()
}

// EnsureConfigLoaded loads the config file. With --from-env or --env-file the
// ambient environment is overlaid, and a missing file falls back to the
// environment alone.
func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	if rt.envFile != "" {
		env, err := config.FileEnvironment(rt.envFile, rt.env)
		if err != nil {
			return err
		}
		rt.env = env
		rt.fromEnv = true
	}
	cfg, err := config.Load(rt.configPath)
	switch {
	case err == nil && rt.fromEnv:
		if err := cfg.Overlay(rt.env); err != nil {
			return err
		}
	case err != nil && rt.fromEnv && errors.Is(err, fs.ErrNotExist):
		rt.Logger().Debugw("No config file, using the ambient environment only", "error", err)
		cfg, err = config.LoadEnvironment(rt.env)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}
	rt.cfg = &cfg
	return nil
}

// NewComposer builds a composer from the loaded configuration. The SMTP
// password is resolved from the keyring first when configured.
func (rt *runtimeState) NewComposer() (*mail.Composer, error) {
	if rt.cfg == nil {
		return nil, errors.New("config not loaded")
	}
	if err := rt.cfg.ResolvePassword(); err != nil {
		return nil, err
	}
	opts := append([]mail.ComposerOption{mail.WithLogger(rt.Logger())}, rt.composerOpts...)
	return mail.NewComposerFromConfig(*rt.cfg, opts...), nil
}

// TemplatePath resolves a relative template name against templates.dir.
func (rt *runtimeState) TemplatePath(name string) string {
	if rt.cfg == nil {
		return name
	}
	return rt.cfg.TemplatePath(name)
}

// WriteMetrics writes the textfile requested with --metrics-textfile.
func (rt *runtimeState) WriteMetrics() error {
	if rt.metricsTextfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(rt.metricsTextfile); err != nil {
		rt.Logger().Warnw("Failed to write metrics textfile", "path", rt.metricsTextfile, "error", err)
		return err
	}
	return nil
}
