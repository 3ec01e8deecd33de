package system

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/morrow/internal/cli"
	"github.com/julianstephens/morrow/internal/config"
	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/utils"
)

type InitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
	Yes   bool `short:"y" help:"Accept defaults without prompting."`
}

// initFields holds the form state; huh binds to plain strings.
type initFields struct {
	SourceList string
	OutputList string
	Timezone   string
	APIFormat  string
	BaseURL    string
	Model      string
	Bio        string
	Routine    map[string]*string
}

var routineKeys = []struct {
	key, title, placeholder string
}{
	{constants.PrefWakeUp, "Wake up", "7:30左右"},
	{constants.PrefSleep, "Sleep", "尽量23点前睡觉"},
	{constants.PrefBreakfast, "Breakfast", "起床后半小时"},
	{constants.PrefLunch, "Lunch", "12点到1点之间"},
	{constants.PrefDinner, "Dinner", "晚上6点半到7点半"},
	{constants.PrefShower, "Shower", "一般晚饭后洗澡"},
}

func fieldsFromConfig(cfg *config.Config) *initFields {
	f := &initFields{
		SourceList: cfg.Storage.SourceList,
		OutputList: cfg.Storage.OutputList,
		Timezone:   cfg.Timezone,
		APIFormat:  cfg.LLM.APIFormat,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Bio:        cfg.Preferences.Bio,
		Routine:    make(map[string]*string, len(routineKeys)),
	}
	for _, r := range routineKeys {
		v, _ := cfg.Preferences.Get(r.key)
		f.Routine[r.key] = &v
	}
	return f
}

// apply copies the form back into cfg. Blank routine answers are dropped
// so the extractor falls back to its defaults.
func (f *initFields) apply(cfg *config.Config) {
	cfg.Storage.SourceList = strings.TrimSpace(f.SourceList)
	cfg.Storage.OutputList = strings.TrimSpace(f.OutputList)
	cfg.Timezone = strings.TrimSpace(f.Timezone)
	cfg.LLM.APIFormat = f.APIFormat
	cfg.LLM.BaseURL = strings.TrimSpace(f.BaseURL)
	cfg.LLM.Model = strings.TrimSpace(f.Model)

	prefs := config.Preferences{Bio: strings.TrimSpace(f.Bio)}
	for _, r := range routineKeys {
		if v := strings.TrimSpace(*f.Routine[r.key]); v != "" {
			prefs.Set(r.key, v)
		}
	}
	// keep keys the form does not know about
	for _, e := range cfg.Preferences.Entries {
		if _, known := f.Routine[e.Key]; !known {
			prefs.Set(e.Key, e.Value)
		}
	}
	cfg.Preferences = prefs
}

func notEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func newInitForm(f *initFields) *huh.Form {
	routine := make([]huh.Field, 0, len(routineKeys)+1)
	routine = append(routine, huh.NewText().
		Title("About you").
		Description("Passed to the language model as context.").
		Value(&f.Bio))
	for _, r := range routineKeys {
		routine = append(routine, huh.NewInput().
			Title(r.title).
			Placeholder(r.placeholder).
			Value(f.Routine[r.key]))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source list").
				Description("Tasks to plan are read from this list.").
				Value(&f.SourceList).
				Validate(notEmpty("source list")),
			huh.NewInput().
				Title("Output list").
				Description("The schedule is written to this list.").
				Value(&f.OutputList).
				Validate(func(s string) error {
					if err := notEmpty("output list")(s); err != nil {
						return err
					}
					if strings.TrimSpace(s) == strings.TrimSpace(f.SourceList) {
						return fmt.Errorf("output list must differ from the source list")
					}
					return nil
				}),
			huh.NewInput().
				Title("Timezone").
				Value(&f.Timezone).
				Validate(func(s string) error {
					if !utils.ValidateTimezone(strings.TrimSpace(s)) {
						return fmt.Errorf("unknown timezone %q", s)
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("API format").
				Options(
					huh.NewOption("OpenAI compatible", string(llm.FormatOpenAI)),
					huh.NewOption("Anthropic", string(llm.FormatAnthropic)),
					huh.NewOption("Gemini", string(llm.FormatGemini)),
				).
				Value(&f.APIFormat),
			huh.NewInput().
				Title("Base URL").
				Value(&f.BaseURL).
				Validate(notEmpty("base URL")),
			huh.NewInput().
				Title("Model").
				Value(&f.Model).
				Validate(notEmpty("model")),
		),
		huh.NewGroup(routine...).Title("Daily routine"),
	)
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	exists := config.Exists(ctx.ConfigPath)
	switch {
	case exists && !c.Force:
		fmt.Fprintf(ctx.Out, "Config already exists at %s (use --force to rewrite it)\n", ctx.ConfigPath)
	default:
		cfg := ctx.Config
		if !exists && len(cfg.Preferences.Entries) == 0 {
			cfg.Preferences = config.DefaultPreferences()
		}
		if !c.Yes {
			fields := fieldsFromConfig(cfg)
			if err := newInitForm(fields).Run(); err != nil {
				return fmt.Errorf("init cancelled: %w", err)
			}
			fields.apply(cfg)
		}
		if err := config.Save(ctx.ConfigPath, cfg); err != nil {
			return err
		}
		fmt.Fprintf(ctx.Out, "Wrote config to %s\n", ctx.ConfigPath)
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized morrow storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
