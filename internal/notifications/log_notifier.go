package notifications

import (
	"context"
	"log/slog"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyRoleChange(ctx context.Context, in RoleChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// operational notice only; who made the change is not recorded
	n.log.InfoContext(ctx, "role changed",
		"target_id", in.TargetID,
		"role", in.Role,
	)
	return nil
}
