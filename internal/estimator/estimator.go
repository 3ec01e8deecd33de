// Package estimator asks a language model for per-task duration, priority
// and focus estimates, and reconciles the answer against the known tasks.
package estimator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/morrow/internal/constants"
	"github.com/julianstephens/morrow/internal/llm"
	"github.com/julianstephens/morrow/internal/logger"
	"github.com/julianstephens/morrow/internal/models"
)

// Completer sends a prompt pair to a language model.
type Completer interface {
	Complete(ctx context.Context, system, user string, opts llm.Options) (string, error)
}

type Estimator struct {
	client Completer
}

func New(client Completer) *Estimator {
	return &Estimator{client: client}
}

type request struct {
	Tasks       []requestTask `json:"tasks"`
	UserContext string        `json:"user_context,omitempty"`
}

type requestTask struct {
	ID    string       `json:"id"`
	Title string       `json:"title"`
	Notes string       `json:"notes,omitempty"`
	Hints requestHints `json:"hints"`
}

type requestHints struct {
	DurationHint *int   `json:"duration_hint,omitempty"`
	TimePeriod   string `json:"time_period,omitempty"`
	Priority     string `json:"priority"`
}

// Estimate returns one estimate per task, in task order. Entries the model
// leaves out are filled with heuristic defaults.
func (e *Estimator) Estimate(ctx context.Context, tasks []models.PreprocessedTask, bio string) ([]models.TaskEstimate, error) {
	if len(tasks) == 0 {
		return []models.TaskEstimate{}, nil
	}

	prompt, err := buildPrompt(tasks, bio)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Complete(ctx, systemPrompt, prompt, llm.Options{Temperature: 0.3, JSON: true})
	if err != nil {
		return nil, fmt.Errorf("estimate tasks: %w", err)
	}

	raw, err := ParseResponse(resp)
	if err != nil {
		return nil, err
	}
	logger.Debug("estimates received", "count", len(raw), "tasks", len(tasks))
	return Reconcile(tasks, raw), nil
}

func buildPrompt(tasks []models.PreprocessedTask, bio string) (string, error) {
	req := request{UserContext: strings.TrimSpace(bio)}
	for _, t := range tasks {
		req.Tasks = append(req.Tasks, requestTask{
			ID:    t.ID,
			Title: t.Title,
			Notes: t.Notes,
			Hints: requestHints{
				DurationHint: t.Hints.DurationHint,
				TimePeriod:   string(t.Hints.TimePeriod),
				Priority:     string(t.Hints.Priority),
			},
		})
	}
	b, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	return string(b), nil
}

const systemPrompt = `You are a task estimation assistant. Analyze tasks and estimate their properties.

For each task, output:
- task_id: the id of the task, copied exactly
- estimated_duration: realistic time in minutes (15-240 range, round to 5)
- priority: "High", "Normal", or "Low"
- preferred_period: "Morning", "Afternoon", "Evening", or null
- requires_focus: true if deep concentration needed (coding, writing, study)
- can_split: true if task can be done in multiple sessions

Rules:
1. Use hints if provided (duration_hint, time_period, priority)
2. Consider user_context for personalized estimates
3. Short tasks: 15-30 min (emails, calls, quick reviews)
4. Medium tasks: 30-90 min (meetings, focused work sessions)
5. Long tasks: 90-240 min (deep work, complex projects)
6. Morning is best for focus tasks, afternoon for meetings/collaborative work

Output ONLY a JSON object, no markdown, no explanation:
{"estimates": [
  {"task_id": "<id>", "estimated_duration": 60, "priority": "Normal", "preferred_period": "Morning", "requires_focus": true, "can_split": false}
]}`

// TaskRef is a task_id as returned by the model: either the opaque id string
// or a number, which is read as the task's ingestion ordinal.
type TaskRef struct {
	ID      string
	Ordinal int
	IsIndex bool
}

func (r *TaskRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("task_id must be a string or integer, got %s", b)
	}
	r.Ordinal = n
	r.IsIndex = true
	return nil
}

// RawEstimate is one entry of the model's answer before validation.
type RawEstimate struct {
	TaskID            TaskRef `json:"task_id"`
	EstimatedDuration int     `json:"estimated_duration"`
	Priority          string  `json:"priority"`
	PreferredPeriod   *string `json:"preferred_period"`
	RequiresFocus     *bool   `json:"requires_focus"`
	CanSplit          *bool   `json:"can_split"`
}

// ParseResponse accepts a JSON array of estimates or an object holding one
// under "estimates" or "tasks". Markdown fences are stripped first.
func ParseResponse(resp string) ([]RawEstimate, error) {
	body := llm.StripCodeFence(resp)

	var estimates []RawEstimate
	if strings.HasPrefix(body, "[") {
		if err := json.Unmarshal([]byte(body), &estimates); err != nil {
			return nil, fmt.Errorf("parse estimates: %w (response: %s)", err, resp)
		}
		return estimates, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
		return nil, fmt.Errorf("parse estimates: %w (response: %s)", err, resp)
	}
	for _, key := range []string{"estimates", "tasks"} {
		if arr, ok := wrapper[key]; ok {
			if err := json.Unmarshal(arr, &estimates); err != nil {
				return nil, fmt.Errorf("parse estimates: %w (response: %s)", err, resp)
			}
			return estimates, nil
		}
	}
	return nil, fmt.Errorf("parse estimates: no estimates array found (response: %s)", resp)
}

// Reconcile validates raw estimates against the known tasks. Unknown ids are
// ignored, durations are clamped, and tasks without an estimate get
// defaults built from their hints. The result follows task order.
func Reconcile(tasks []models.PreprocessedTask, raw []RawEstimate) []models.TaskEstimate {
	byID := make(map[string]models.PreprocessedTask, len(tasks))
	byOrdinal := make(map[int]models.PreprocessedTask, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
		byOrdinal[t.Ordinal] = t
	}

	found := make(map[string]models.TaskEstimate, len(raw))
	for _, r := range raw {
		var (
			task models.PreprocessedTask
			ok   bool
		)
		if r.TaskID.IsIndex {
			task, ok = byOrdinal[r.TaskID.Ordinal]
		} else {
			task, ok = byID[r.TaskID.ID]
		}
		if !ok {
			logger.Debug("ignoring estimate for unknown task", "task_id", r.TaskID.ID, "ordinal", r.TaskID.Ordinal)
			continue
		}
		if _, dup := found[task.ID]; dup {
			continue
		}

		est := models.TaskEstimate{
			TaskID:            task.ID,
			EstimatedDuration: clampDuration(r.EstimatedDuration),
			Priority:          models.ParsePriority(r.Priority),
			RequiresFocus:     false,
			CanSplit:          true,
		}
		if r.PreferredPeriod != nil {
			est.PreferredPeriod = models.ParseTimePeriod(*r.PreferredPeriod)
		}
		if r.RequiresFocus != nil {
			est.RequiresFocus = *r.RequiresFocus
		}
		if r.CanSplit != nil {
			est.CanSplit = *r.CanSplit
		}
		found[task.ID] = est
	}

	out := make([]models.TaskEstimate, 0, len(tasks))
	for _, t := range tasks {
		if est, ok := found[t.ID]; ok {
			out = append(out, est)
			continue
		}
		out = append(out, Default(t))
	}
	return out
}

// Default builds a heuristic estimate from a task's own hints.
func Default(t models.PreprocessedTask) models.TaskEstimate {
	duration := constants.DefaultEstimateMin
	if t.Hints.DurationHint != nil {
		duration = *t.Hints.DurationHint
	}
	priority := t.Hints.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	return models.TaskEstimate{
		TaskID:            t.ID,
		EstimatedDuration: clampDuration(duration),
		Priority:          priority,
		PreferredPeriod:   t.Hints.TimePeriod,
		RequiresFocus:     false,
		CanSplit:          true,
	}
}

// Defaults estimates every task from its hints alone.
func Defaults(tasks []models.PreprocessedTask) []models.TaskEstimate {
	return Reconcile(tasks, nil)
}

func clampDuration(minutes int) int {
	return max(constants.MinEstimateMin, min(minutes, constants.MaxEstimateMin))
}
