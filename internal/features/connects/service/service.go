package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

type connectsService struct {
	api ConnectsAPI
	log zerolog.Logger
}

func NewConnectsService(api ConnectsAPI) ConnectsService {
	return &connectsService{
		api: api,
		log: logger.Component("connects"),
	}
}

// List returns the user's connections. Any failure degrades to an empty
// list; the Connections view renders nothing rather than an error screen.
func (s *connectsService) List(ctx context.Context, userID int64) []linkupapi.Connection {
	connections, err := s.api.GetUserGroups(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("Connection list fetch failed, rendering empty")
		return []linkupapi.Connection{}
	}
	if connections == nil {
		connections = []linkupapi.Connection{}
	}
	return connections
}

// Connect resolves the profile behind a scanned QR payload and records an
// instant connection with it. Self-connections and unknown targets are
// rejected with typed errors the caller reports in place.
func (s *connectsService) Connect(ctx context.Context, self *linkupapi.Profile, qrText string, opts ConnectOptions) (*linkupapi.Connection, error) {
	if self == nil {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "no profile to connect from")
	}

	targetTgID, err := ParseQRTarget(qrText)
	if err != nil {
		return nil, err
	}

	target, err := s.api.GetUserByTgID(ctx, targetTgID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsNotFound() {
			return nil, apperrors.NewUserNotFoundError(targetTgID)
		}
		return nil, err
	}

	if target.UserID == self.UserID {
		return nil, apperrors.NewConflictError("connection", "cannot connect with yourself")
	}

	groupID, err := s.api.CreateGroup(ctx, linkupapi.CreateGroupPayload{
		GroupLink:       newGroupLink(),
		User1ID:         self.UserID,
		User2ID:         target.UserID,
		EventName:       opts.EventName,
		MeetingLocation: opts.MeetingLocation,
		MeetingTime:     opts.MeetingTime,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("group_id", groupID).
		Int64("user_id", self.UserID).
		Int64("other_user_id", target.UserID).
		Msg("Connection created")

	// The create response carries only the group id; re-read for the
	// canonical record and fold in the already-resolved target profile.
	details, err := s.api.GetGroupDetails(ctx, groupID)
	if err != nil {
		s.log.Warn().Err(err).Int64("group_id", groupID).Msg("Group re-read failed after create")
		return &linkupapi.Connection{
			GroupID:     groupID,
			OtherUserID: target.UserID,
			OtherUser:   *target,
		}, nil
	}

	return &linkupapi.Connection{
		GroupID:         details.Group.GroupID,
		GroupLink:       details.Group.GroupLink,
		EventName:       details.Group.EventName,
		MeetingLocation: details.Group.MeetingLocation,
		MeetingTime:     details.Group.MeetingTime,
		CreatedAt:       details.Group.CreatedAt,
		UpdatedAt:       details.Group.UpdatedAt,
		OtherUserID:     target.UserID,
		OtherUser:       *target,
	}, nil
}

// newGroupLink builds a unique invite-style link for a freshly recorded
// pairing. The backend only stores the string.
func newGroupLink() string {
	return "https://t.me/+" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
