package service

import (
	"context"

	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

// ProfileAPI is the slice of the backend client this service depends on.
type ProfileAPI interface {
	GetUserByTgID(ctx context.Context, tgID int64) (*linkupapi.Profile, error)
	GetUserDetails(ctx context.Context, userID int64) (*linkupapi.Profile, error)
	CreateUser(ctx context.Context, payload linkupapi.CreateUserPayload) (int64, error)
	UpdateUser(ctx context.Context, userID int64, payload linkupapi.UpdateUserPayload) error
	QRImageURL(tgID int64) string
}

// ProfileService is the total request/response gateway for profiles: every
// operation produces a value, and failures degrade to nil rather than
// surfacing as errors.
type ProfileService interface {
	Fetch(ctx context.Context, tgID int64) *linkupapi.Profile
	Create(ctx context.Context, payload linkupapi.CreateUserPayload) *linkupapi.Profile
	Update(ctx context.Context, userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile
	Complete(profile *linkupapi.Profile) bool
	QRImageURL(tgID int64) string
}
