package system

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/config"
	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/utils"
)

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	out, err := yaml.Marshal(ctx.Config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	_, err = ctx.Out.Write(out)
	return err
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(ctx *cli.Context) error {
	fmt.Fprintln(ctx.Out, config.ExpandHome(ctx.ConfigPath))
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting such as 'timezone', 'llm.model' or a preference key like 'wake_up'."`
	Value string `arg:"" help:"New value."`
}

// setters covers the scalar settings; any other key is a routine preference.
var setters = map[string]func(cfg *config.Config, v string) error{
	"timezone": func(cfg *config.Config, v string) error {
		if !utils.ValidateTimezone(v) {
			return fmt.Errorf("unknown timezone %q", v)
		}
		cfg.Timezone = v
		return nil
	},
	"storage.database":    func(cfg *config.Config, v string) error { cfg.Storage.Database = v; return nil },
	"storage.source_list": func(cfg *config.Config, v string) error { cfg.Storage.SourceList = v; return nil },
	"storage.output_list": func(cfg *config.Config, v string) error { cfg.Storage.OutputList = v; return nil },
	"llm.api_format": func(cfg *config.Config, v string) error {
		f, err := llm.ParseAPIFormat(v)
		if err != nil {
			return err
		}
		cfg.LLM.APIFormat = string(f)
		return nil
	},
	"llm.base_url": func(cfg *config.Config, v string) error { cfg.LLM.BaseURL = v; return nil },
	"llm.model":    func(cfg *config.Config, v string) error { cfg.LLM.Model = v; return nil },
	"llm.requests_per_minute": func(cfg *config.Config, v string) error {
		n, err := positiveInt(v)
		cfg.LLM.RequestsPerMinute = n
		return err
	},
	"llm.timeout_seconds": func(cfg *config.Config, v string) error {
		n, err := positiveInt(v)
		cfg.LLM.TimeoutSeconds = n
		return err
	},
	"daemon.cron": func(cfg *config.Config, v string) error { cfg.Daemon.Cron = v; return nil },
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive integer", s)
	}
	return n, nil
}

func (c *ConfigSetCmd) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("key cannot be empty")
	}
	return nil
}

func (c *ConfigSetCmd) Run(ctx *cli.Context) error {
	key := strings.TrimPrefix(strings.TrimSpace(c.Key), "preferences.")
	value := strings.TrimSpace(c.Value)

	// work on a copy so a failed setter leaves the loaded config intact
	cfg := *ctx.Config
	cfg.Preferences.Entries = append([]config.Preference(nil), ctx.Config.Preferences.Entries...)

	if set, ok := setters[key]; ok {
		if err := set(&cfg, value); err != nil {
			return err
		}
	} else {
		if strings.Contains(key, ".") {
			return fmt.Errorf("unknown setting %q", c.Key)
		}
		cfg.Preferences.Set(key, value)
	}

	if err := config.Save(ctx.ConfigPath, &cfg); err != nil {
		return err
	}
	*ctx.Config = cfg
	fmt.Fprintf(ctx.Out, "Set %s = %q\n", key, value)
	return nil
}
