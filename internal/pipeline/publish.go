package pipeline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/morrow/internal/constants"
	apperrors "github.com/julianstephens/morrow/internal/errors"
	"github.com/julianstephens/morrow/internal/models"
)

// TaskWriter is the part of the task store a published schedule needs.
type TaskWriter interface {
	EnsureList(title string) (models.TaskList, error)
	HasIncompleteTasks(listID string) (bool, error)
	ClearList(listID string) (int, error)
	AddTask(models.Task) (models.Task, error)
}

var (
	titlePattern    = regexp.MustCompile(`^` + regexp.QuoteMeta(constants.ScheduleTitlePrefix) + ` \[(\d{2}:\d{2})\] (.*)$`)
	durationPattern = regexp.MustCompile(`^Duration: (\d+) minutes$`)
)

// EncodeItem renders one schedule entry as a task due on date.
func EncodeItem(item models.PolishedItem, date time.Time, listID string) models.Task {
	notes := fmt.Sprintf("Duration: %d minutes", item.Duration)
	if item.Suggestion != "" {
		notes += "\n" + item.Suggestion
	}
	return models.Task{
		ListID: listID,
		Title:  fmt.Sprintf("%s [%s] %s", constants.ScheduleTitlePrefix, item.Time, item.Title),
		Notes:  notes,
		Due:    date.Format(constants.DateFormat),
	}
}

// DecodeTask reverses EncodeItem. It reports false for tasks that were not
// written by a planning run.
func DecodeTask(task models.Task) (models.PolishedItem, bool) {
	m := titlePattern.FindStringSubmatch(task.Title)
	if m == nil {
		return models.PolishedItem{}, false
	}
	item := models.PolishedItem{Time: m[1], Title: m[2]}

	first, rest, _ := strings.Cut(task.Notes, "\n")
	if dm := durationPattern.FindStringSubmatch(first); dm != nil {
		item.Duration, _ = strconv.Atoi(dm[1])
		item.Suggestion = strings.TrimSpace(rest)
	} else {
		item.Suggestion = strings.TrimSpace(task.Notes)
	}
	return item, true
}

// Publish writes the schedule to the named list in schedule order. It
// refuses while the list still holds incomplete tasks unless force is set,
// in which case the list is cleared first.
func Publish(store TaskWriter, listTitle string, date time.Time, items []models.PolishedItem, force bool) (int, error) {
	list, err := store.EnsureList(listTitle)
	if err != nil {
		return 0, err
	}

	busy, err := store.HasIncompleteTasks(list.ID)
	if err != nil {
		return 0, err
	}
	if busy {
		if !force {
			return 0, fmt.Errorf("%w (list %q)", apperrors.ErrOutputListNotEmpty, listTitle)
		}
		if _, err := store.ClearList(list.ID); err != nil {
			return 0, err
		}
	}

	for i, item := range items {
		if _, err := store.AddTask(EncodeItem(item, date, list.ID)); err != nil {
			return i, fmt.Errorf("failed to write %q: %w", item.Title, err)
		}
	}
	return len(items), nil
}
