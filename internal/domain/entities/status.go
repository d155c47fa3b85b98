package entities

import "time"

// dueSoonHorizonDays is how far ahead of the due date a task flips from
// healthy to maintenance.
const dueSoonHorizonDays = 7

// DetermineStatus computes the correct status for a task from its next
// maintenance date and the given instant.
//
// The completed status is sticky: only the reconciliation demotion sweep
// clears it, never this rule. A task with nothing scheduled is healthy.
// The 7-day boundary and the "now" comparison are inclusive on the future
// side: a task due in exactly 7 days, or due exactly now, is in maintenance,
// not healthy or overdue.
func DetermineStatus(t *Task, now time.Time) TaskStatus {
	if t.Status == TaskStatusCompleted {
		return TaskStatusCompleted
	}

	if t.NextMaintenance == nil {
		return TaskStatusHealthy
	}

	next := *t.NextMaintenance

	if next.After(now.AddDate(0, 0, dueSoonHorizonDays)) {
		return TaskStatusHealthy
	}
	if !next.Before(now) {
		return TaskStatusMaintenance
	}
	return TaskStatusOverdue
}

// ComputeMaintenanceWindow computes the next maintenance window for a
// recurring task: the task becomes due in Frequency days and stays within an
// acceptable completion window of MaintenanceWindowDays after that.
//
// Returns nil when the task has no recurrence window configuration, which
// callers must treat as "no window applicable".
func ComputeMaintenanceWindow(t *Task, now time.Time) *MaintenanceWindow {
	if !t.IsRecurring || t.Frequency == nil || t.MaintenanceWindowDays == nil {
		return nil
	}

	start := now.AddDate(0, 0, *t.Frequency)
	return &MaintenanceWindow{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, *t.MaintenanceWindowDays),
	}
}

// AggregateProductStatus derives a product's status from its tasks' statuses:
// overdue if any task is overdue, maintenance if any is in maintenance,
// healthy otherwise (including the empty task set).
func AggregateProductStatus(tasks []*Task) ProductStatus {
	worst := 0
	for _, t := range tasks {
		if s := t.Status.Severity(); s > worst {
			worst = s
		}
	}
	switch worst {
	case 2:
		return ProductStatusOverdue
	case 1:
		return ProductStatusMaintenance
	default:
		return ProductStatusHealthy
	}
}
