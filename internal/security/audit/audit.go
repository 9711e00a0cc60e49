package audit

import (
	"context"
	"log/slog"
	"time"
)

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, actorID, action, resource, resourceID, status, details string) {
	requestID := ""
	if reqID := ctx.Value("request_id"); reqID != nil {
		requestID = reqID.(string)
	}

	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("actor_id", actorID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", requestID),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogFired(ctx context.Context, actorID, userID string) {
	al.LogAction(ctx, actorID, "fire", "user", userID, "applied", "")
}

func (al *Logger) LogPromoted(ctx context.Context, actorID, userID string) {
	al.LogAction(ctx, actorID, "promote_hr", "user", userID, "applied", "")
}

func (al *Logger) LogSalaryChange(ctx context.Context, actorID, userID, details string) {
	al.LogAction(ctx, actorID, "adjust_salary", "user", userID, "applied", details)
}

func (al *Logger) LogVerifyToggle(ctx context.Context, actorID, userID, details string) {
	al.LogAction(ctx, actorID, "toggle_verified", "user", userID, "applied", details)
}

func (al *Logger) LogPayment(ctx context.Context, actorID, requestID, details string) {
	al.LogAction(ctx, actorID, "pay_payroll", "payroll_request", requestID, "applied", details)
}

func (al *Logger) LogDenied(ctx context.Context, actorID, reason string) {
	al.LogAction(ctx, actorID, "access_denied", "api", "", "denied", reason)
}
