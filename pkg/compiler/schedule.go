package compiler

import (
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
)

// Schedule defaults applied when the scheduling step carries no valid
// parameters. Defaults are always safe, so bad values degrade to
// warnings instead of failing compilation.
const (
	DefaultIntervalSeconds = 300
	DefaultDurationSeconds = 86400
)

// Schedule describes the recurring trigger derived from a scheduling
// step.
type Schedule struct {
	IntervalSeconds int    `json:"interval_seconds" validate:"required,gt=0"`
	DurationSeconds int    `json:"duration_seconds" validate:"required,gt=0"`
	Cron            string `json:"cron,omitempty"`
}

// parseSchedule reads scheduling parameters from a step's config
// hints with strict positive-integer validation.
func parseSchedule(hints map[string]string) (Schedule, []string) {
	var warnings []string

	schedule := Schedule{
		IntervalSeconds: DefaultIntervalSeconds,
		DurationSeconds: DefaultDurationSeconds,
	}

	if interval, ok := positiveInt(hints, "interval_seconds", "interval"); ok {
		schedule.IntervalSeconds = interval
	} else if hasAny(hints, "interval_seconds", "interval") {
		warnings = append(warnings, fmt.Sprintf(
			"invalid schedule interval, using default %ds", DefaultIntervalSeconds))
	}

	if duration, ok := positiveInt(hints, "duration_seconds", "duration"); ok {
		schedule.DurationSeconds = duration
	} else if hasAny(hints, "duration_seconds", "duration") {
		warnings = append(warnings, fmt.Sprintf(
			"invalid schedule duration, using default %ds", DefaultDurationSeconds))
	}

	if expr, ok := hints["cron"]; ok && expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			warnings = append(warnings, "invalid cron expression dropped: "+expr)
		} else {
			schedule.Cron = expr
		}
	}

	return schedule, warnings
}

func positiveInt(hints map[string]string, keys ...string) (int, bool) {
	for _, key := range keys {
		raw, ok := hints[key]
		if !ok {
			continue
		}

		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			return 0, false
		}

		return value, true
	}

	return 0, false
}

func hasAny(hints map[string]string, keys ...string) bool {
	for _, key := range keys {
		if _, ok := hints[key]; ok {
			return true
		}
	}

	return false
}
