package service

import (
	"context"

	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

// ConnectsAPI is the slice of the backend client this service depends on.
type ConnectsAPI interface {
	GetUserByTgID(ctx context.Context, tgID int64) (*linkupapi.Profile, error)
	GetUserGroups(ctx context.Context, userID int64) ([]linkupapi.Connection, error)
	CreateGroup(ctx context.Context, payload linkupapi.CreateGroupPayload) (int64, error)
	GetGroupDetails(ctx context.Context, groupID int64) (*linkupapi.GroupDetails, error)
}

// ConnectsService lists the user's connections and records new ones from
// scanned QR payloads.
type ConnectsService interface {
	List(ctx context.Context, userID int64) []linkupapi.Connection
	Connect(ctx context.Context, self *linkupapi.Profile, qrText string, opts ConnectOptions) (*linkupapi.Connection, error)
}

// ConnectOptions carries the optional event context of a new connection.
type ConnectOptions struct {
	EventName       string
	MeetingLocation string
	MeetingTime     string
}
