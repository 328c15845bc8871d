package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/composekit/composekit/pkg/compose"
	"github.com/composekit/composekit/pkg/docker"
)

// app carries the state shared by all subcommands. It is populated once in
// the root PersistentPreRunE, after flags are parsed.
type app struct {
	cfg    *Config
	logger *slog.Logger
	client *docker.DockerClient
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		configPath  string
		projectName string
		projectFile string
		projectDir  string
		logLevel    string
		logFormat   string
		dockerHost  string
	)

	root := &cobra.Command{
		Use:           "composekit",
		Short:         "Multi-container orchestration for development and test environments",
		Version:       Version + " (built " + BuildTime + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if projectName != "" {
				cfg.Project.Name = projectName
			}
			if cmd.Flags().Changed("file") {
				cfg.Project.File = projectFile
			}
			if cmd.Flags().Changed("dir") {
				cfg.Project.Dir = projectDir
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if dockerHost != "" {
				cfg.Docker.Host = dockerHost
			}

			a.cfg = cfg
			a.logger = SetupLogger(cfg)

			client, err := docker.NewDockerClient(cfg.Docker.Host)
			if err != nil {
				return err
			}
			a.client = client
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.client != nil {
				a.client.Close()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file")
	pf.StringVarP(&projectName, "project", "p", "", "project name (default: directory name)")
	pf.StringVarP(&projectFile, "file", "f", "docker-compose.yml", "compose file name")
	pf.StringVarP(&projectDir, "dir", "d", ".", "project directory")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&dockerHost, "docker-host", "", "docker daemon address")

	root.AddCommand(
		newUpCmd(a),
		newDownCmd(a),
		newPsCmd(a),
		newLogsCmd(a),
		newExecCmd(a),
		newWaitCmd(a),
		newRmCmd(a),
		newReadyCmd(a),
	)

	return root
}

// project loads the compose file and builds the project facade.
func (a *app) project() (*compose.Project, error) {
	config, err := compose.Load(a.cfg.Project.Dir, a.cfg.Project.File)
	if err != nil {
		return nil, err
	}
	return compose.NewProject(
		a.cfg.ProjectName(),
		config,
		a.client,
		compose.WithLogger(a.logger),
		compose.WithStopTimeout(a.cfg.Project.StopTimeout),
	), nil
}
