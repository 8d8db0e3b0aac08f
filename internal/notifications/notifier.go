// Package notifications fans out account events that other systems may care
// about. Delivery is best effort and never blocks the request that caused it.
package notifications

import "context"

type RoleChange struct {
	TargetID    string
	TargetEmail string
	Role        string
}

type Notifier interface {
	NotifyRoleChange(ctx context.Context, change RoleChange) error
}
