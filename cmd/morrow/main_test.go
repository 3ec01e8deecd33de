package main

import (
	"testing"

	"github.com/alecthomas/kong"
)

func TestCommandTree(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"plan"}, "plan"},
		{[]string{"plan", "2026-03-02", "--offline", "--dry-run"}, "plan <date>"},
		{[]string{"show", "--plain"}, "show"},
		{[]string{"task", "add", "写报告", "--notes", "2 hours"}, "task add <title>"},
		{[]string{"task", "clear", "--no-backup"}, "task clear"},
		{[]string{"config"}, "config show"},
		{[]string{"config", "set", "wake_up", "7点"}, "config set <key> <value>"},
		{[]string{"auth", "set-db", "postgres://u@localhost/morrow"}, "auth set-db <connection-string>"},
		{[]string{"backup"}, "backup create"},
		{[]string{"daemon", "--run-now"}, "daemon"},
		{[]string{"init", "-y"}, "init"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			grammar := CLI
			parser, err := kong.New(&grammar, options("/tmp/morrow/config.yaml")...)
			if err != nil {
				t.Fatalf("kong.New: %v", err)
			}
			ctx, err := parser.Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%v): %v", tt.args, err)
			}
			if got := ctx.Command(); got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
			if grammar.Config != "/tmp/morrow/config.yaml" {
				t.Errorf("config default = %q", grammar.Config)
			}
		})
	}
}
