package service

import (
	"context"
	"errors"

	"github.com/noah-isme/gema-learn-api/internal/models"
)

// ErrForbidden indicates the actor may not touch the requested resource.
var ErrForbidden = errors.New("not allowed to access this resource")

// ErrConfirmationRequired guards destructive actions that were not explicitly confirmed.
var ErrConfirmationRequired = errors.New("explicit confirmation required")

// ActivityActor represents the authenticated user performing an action.
type ActivityActor struct {
	ID   uint
	Role string
}

// Is reports whether the actor holds the given role.
func (a ActivityActor) Is(role models.Role) bool {
	return models.Role(a.Role) == role
}

// DashboardInvalidator drops cached dashboards after a student's submissions change.
type DashboardInvalidator interface {
	Invalidate(ctx context.Context, studentID uint)
}

func invalidateDashboards(ctx context.Context, dashboards DashboardInvalidator, students []uint) {
	if dashboards == nil {
		return
	}
	for _, id := range students {
		dashboards.Invalidate(ctx, id)
	}
}
