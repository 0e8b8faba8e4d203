package botrule

import "context"

type Repository interface {
	ListActiveRules(ctx context.Context) ([]Rule, error)
	ListGroups(ctx context.Context) ([]Group, error)
}
