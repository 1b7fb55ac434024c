package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldPlanID identifies the resolution plan a record belongs to.
	FieldPlanID = "plan_id"
	// FieldClipID identifies the timeline clip a record belongs to.
	FieldClipID = "clip_id"
	// FieldShotKey is the version-independent shot name.
	FieldShotKey = "shot_key"
	// FieldTrack is the timeline track being processed.
	FieldTrack = "track"
	// FieldEventType classifies a record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	planIDKey contextKey = iota
	clipIDKey
)

// ContextWithPlanID tags ctx with a plan ID for WithContext.
func ContextWithPlanID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, planIDKey, id)
}

// ContextWithClipID tags ctx with a clip ID for WithContext.
func ContextWithClipID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, clipIDKey, id)
}

// PlanIDFromContext returns the plan ID stored in ctx.
func PlanIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(planIDKey).(string)
	return id, ok && id != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := PlanIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldPlanID, id))
	}
	if id, ok := ctx.Value(clipIDKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldClipID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
