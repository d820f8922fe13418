// Package sla derives due-date status from stage metadata and an
// application's time in its current stage. Everything here is a pure
// function of state recomputed on read; nothing is stored.
package sla

import (
	"time"

	"hireflow/internal/pipeline"
)

// DaysInStage returns the whole days an application has spent on its current
// stage as of now. Clock skew can make the difference negative; that clamps
// to zero.
func DaysInStage(app *pipeline.Application, now time.Time) int {
	if app == nil || app.EnteredStageAt.IsZero() {
		return 0
	}
	elapsed := now.Sub(app.EnteredStageAt)
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / (24 * time.Hour))
}

// Breached reports whether the application has exhausted the stage's SLA.
// Stages without dueDays never breach.
func Breached(app *pipeline.Application, stage *pipeline.Stage, now time.Time) bool {
	if stage == nil || stage.DueDays <= 0 {
		return false
	}
	return DaysInStage(app, now) >= stage.DueDays
}

// Deadline returns the instant the stage's SLA runs out, and whether the
// stage carries one.
func Deadline(app *pipeline.Application, stage *pipeline.Stage) (time.Time, bool) {
	if app == nil || stage == nil || stage.DueDays <= 0 {
		return time.Time{}, false
	}
	return app.EnteredStageAt.Add(time.Duration(stage.DueDays) * 24 * time.Hour), true
}
