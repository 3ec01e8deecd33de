// Package polisher asks a language model to rewrite schedule titles and add
// short suggestions without touching timing.
package polisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/models"
)

// Completer sends a prompt pair to a language model.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts llm.Options) (string, error)
}

type Polisher struct {
	client Completer
}

func New(client Completer) *Polisher {
	return &Polisher{client: client}
}

type promptItem struct {
	Time     string `json:"time"`
	Duration int    `json:"duration"`
	Title    string `json:"title"`
	Type     string `json:"type"`
}

type rawItem struct {
	Time       string  `json:"time"`
	Duration   *int    `json:"duration"`
	Title      string  `json:"title"`
	Suggestion *string `json:"suggestion"`
}

// Polish returns one polished item per schedule item, in schedule order.
// Items the model does not return are passed through unchanged.
func (p *Polisher) Polish(ctx context.Context, schedule []models.ScheduledItem, bio string, date time.Time) ([]models.PolishedItem, error) {
	if len(schedule) == 0 {
		return []models.PolishedItem{}, nil
	}

	prompt, err := buildPrompt(schedule, bio, date)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Complete(ctx, systemPrompt, prompt, llm.Options{Temperature: 0.7})
	if err != nil {
		return nil, fmt.Errorf("polish schedule: %w", err)
	}

	polished, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	return merge(schedule, polished), nil
}

func buildPrompt(schedule []models.ScheduledItem, bio string, date time.Time) (string, error) {
	items := make([]promptItem, 0, len(schedule))
	for _, it := range schedule {
		items = append(items, promptItem{
			Time:     it.Time,
			Duration: it.Duration,
			Title:    it.Title,
			Type:     string(it.ItemType),
		})
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal schedule: %w", err)
	}

	var sb strings.Builder
	if bio = strings.TrimSpace(bio); bio != "" {
		fmt.Fprintf(&sb, "User context: %s\n\n", bio)
	}
	fmt.Fprintf(&sb, "Date: %s (%s)\n\nSchedule to polish:\n%s", date.Format("2006-01-02"), date.Weekday(), b)
	return sb.String(), nil
}

const systemPrompt = `You are a schedule polisher. Improve schedule item titles and add helpful suggestions.

For each item, you may:
1. Improve the title to be more descriptive and motivating
2. Add a brief suggestion (optional, only if helpful)
3. Keep the original meaning and timing intact

Rules:
- Keep titles concise (under 30 characters if possible)
- Use consistent language (match user's language preference)
- Suggestions should be actionable and brief
- Don't change time or duration
- For breaks, add relaxation suggestions
- For work sessions, add focus tips
- For meals, add healthy eating reminders

Output ONLY valid JSON array, no markdown:
[
  {"time": "07:30", "duration": 30, "title": "起床洗漱", "suggestion": null},
  {"time": "09:00", "duration": 25, "title": "专注写代码 #1", "suggestion": "先处理最难的任务"}
]`

func parseResponse(resp string) ([]rawItem, error) {
	body := llm.StripCodeFence(resp)

	var items []rawItem
	if strings.HasPrefix(body, "{") {
		var wrapper struct {
			Items    []rawItem `json:"items"`
			Schedule []rawItem `json:"schedule"`
		}
		if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
			return nil, fmt.Errorf("parse polished schedule: %w (response: %s)", err, resp)
		}
		items = append(wrapper.Items, wrapper.Schedule...)
		return items, nil
	}

	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, fmt.Errorf("parse polished schedule: %w (response: %s)", err, resp)
	}
	return items, nil
}

// merge matches polished entries to the originals by exact time string. Time
// and duration always come from the original.
func merge(schedule []models.ScheduledItem, polished []rawItem) []models.PolishedItem {
	used := make([]bool, len(polished))
	out := make([]models.PolishedItem, 0, len(schedule))
	for _, orig := range schedule {
		item := passThrough(orig)
		for i, p := range polished {
			if used[i] || p.Time != orig.Time {
				continue
			}
			used[i] = true
			if title := strings.TrimSpace(p.Title); title != "" {
				item.Title = title
			}
			if p.Suggestion != nil {
				item.Suggestion = strings.TrimSpace(*p.Suggestion)
			}
			break
		}
		out = append(out, item)
	}
	return out
}

// Fallback converts a schedule without calling the model.
func Fallback(schedule []models.ScheduledItem) []models.PolishedItem {
	out := make([]models.PolishedItem, 0, len(schedule))
	for _, it := range schedule {
		out = append(out, passThrough(it))
	}
	return out
}

func passThrough(it models.ScheduledItem) models.PolishedItem {
	return models.PolishedItem{
		Time:     it.Time,
		Duration: it.Duration,
		Title:    it.Title,
		ItemType: it.ItemType,
	}
}
