// Package preprocess turns raw tasks into identified tasks carrying
// heuristic scheduling hints.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/morrow/internal/models"
	"github.com/julianstephens/morrow/internal/textparse"
)

var taskNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("morrow.task"))

// Tasks assigns each raw task an opaque id and extracts hints from its title
// and notes. Output order matches input order.
func Tasks(raw []models.RawTask) []models.PreprocessedTask {
	out := make([]models.PreprocessedTask, 0, len(raw))
	for i, r := range raw {
		out = append(out, models.PreprocessedTask{
			ID:      TaskID(i, r),
			Ordinal: i,
			Title:   r.Title,
			Notes:   r.Notes,
			Hints:   Hints(r.Title + " " + r.Notes),
		})
	}
	return out
}

// TaskID derives a stable id from a task's ingestion position and content,
// so re-running the same input yields the same ids.
func TaskID(ordinal int, r models.RawTask) string {
	name := fmt.Sprintf("%d\x00%s\x00%s", ordinal, r.Title, r.Notes)
	return uuid.NewSHA1(taskNamespace, []byte(name)).String()
}

// Hints scans text for period, priority, duration and start-time signals.
func Hints(text string) models.TimeHint {
	text = strings.TrimSpace(text)
	hint := models.TimeHint{
		Priority:   textparse.DetectPriority(text),
		TimePeriod: textparse.DetectPeriod(text),
	}
	if d, ok := textparse.ExtractDuration(text); ok {
		hint.DurationHint = &d
	}
	if t, ok := textparse.ExtractTime(text); ok {
		hint.PreferredStart = &t
	}
	return hint
}
