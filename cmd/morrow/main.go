package main

import (
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/cli/plans"
	"github.com/julianstephens/morrow/internal/cli/system"
	"github.com/julianstephens/morrow/internal/cli/tasks"
	"github.com/julianstephens/morrow/internal/config"
	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config_path}"`
	Debug   bool   `help:"Log debug output to stderr as well as the log file."`

	Init   system.InitCmd   `cmd:"" help:"Create the config file and initialize storage."`
	Plan   plans.PlanCmd    `cmd:"" help:"Plan a day from the source list and write it to the output list."`
	Show   plans.ShowCmd    `cmd:"" help:"Show the schedule written for a day."`
	Daemon system.DaemonCmd `cmd:"" help:"Plan tomorrow on the configured cron schedule."`
	Task   struct {
		Add   tasks.TaskAddCmd   `cmd:"" help:"Add a task."`
		List  tasks.TaskListCmd  `cmd:"" help:"List tasks."`
		Done  tasks.TaskDoneCmd  `cmd:"" help:"Mark a task completed."`
		Clear tasks.TaskClearCmd `cmd:"" help:"Delete every task in a list."`
	} `cmd:"" help:"Manage tasks."`
	Settings struct {
		Show system.ConfigShowCmd `cmd:"" help:"Print the effective configuration." default:"1"`
		Path system.ConfigPathCmd `cmd:"" help:"Print the config file path."`
		Set  system.ConfigSetCmd  `cmd:"" help:"Change a setting or preference."`
	} `cmd:"" name:"config" help:"Inspect and edit configuration."`
	Backup struct {
		Create  system.BackupCreateCmd  `cmd:"" help:"Snapshot the sqlite database." default:"1"`
		List    system.BackupListCmd    `cmd:"" help:"List snapshots."`
		Restore system.BackupRestoreCmd `cmd:"" help:"Replace the database with a snapshot."`
	} `cmd:"" help:"Manage database snapshots."`
	Auth struct {
		SetKey    system.AuthSetKeyCmd    `cmd:"" name:"set-key" help:"Store the LLM API key in the OS keyring."`
		DeleteKey system.AuthDeleteKeyCmd `cmd:"" name:"delete-key" help:"Remove the LLM API key from the OS keyring."`
		SetDB     system.AuthSetDBCmd     `cmd:"" name:"set-db" help:"Store a PostgreSQL connection string in the OS keyring."`
		DeleteDB  system.AuthDeleteDBCmd  `cmd:"" name:"delete-db" help:"Remove the PostgreSQL connection string from the OS keyring."`
		Status    system.AuthStatusCmd    `cmd:"" help:"Show where credentials are read from."`
	} `cmd:"" help:"Manage credentials."`
}

func options(defaultConfig string) []kong.Option {
	return []kong.Option{
		kong.Name(constants.AppName),
		kong.Description("Plans tomorrow from a task list: routine constraints, pomodoro blocks and LLM estimates"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": defaultConfig,
		},
	}
}

func main() {
	defaultConfig, err := config.DefaultPath()
	if err != nil {
		defaultConfig = filepath.Join("~", ".config", constants.AppName, "config.yaml")
	}

	ctx := kong.Parse(&CLI, options(defaultConfig)...)

	configPath := config.ExpandHome(CLI.Config)
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		Console:   ctx.Command() == "daemon",
		ConfigDir: filepath.Dir(configPath),
	}); err != nil {
		errors.Fatal(err)
	}

	appCtx, err := cli.NewContext(configPath)
	if err != nil {
		errors.Fatal(err)
	}
	defer appCtx.Store.Close()

	logger.Debug("starting", "command", ctx.Command(), "config", configPath, "store", appCtx.Store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		appCtx.Store.Close()
		errors.Fatal(err)
	}
}
