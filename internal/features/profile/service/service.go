package service

import (
	"context"

	"github.com/rs/zerolog"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

type profileService struct {
	api ProfileAPI
	log zerolog.Logger
}

func NewProfileService(api ProfileAPI) ProfileService {
	return &profileService{
		api: api,
		log: logger.Component("profile"),
	}
}

// Fetch returns the profile for a Telegram ID, or nil when it is absent.
// Not-found and transport failure both collapse to nil; callers cannot tell
// a missing profile from an unreachable backend. The two cases are logged at
// different levels so the ambiguity is at least visible in the output.
func (s *profileService) Fetch(ctx context.Context, tgID int64) *linkupapi.Profile {
	profile, err := s.api.GetUserByTgID(ctx, tgID)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsNotFound() {
			s.log.Debug().Int64("tg_id", tgID).Msg("No profile for user")
		} else {
			s.log.Warn().Err(err).Int64("tg_id", tgID).Msg("Profile lookup failed, treating as absent")
		}
		return nil
	}
	return profile
}

// Create registers a profile and re-reads it by Telegram ID, returning the
// canonical server-assigned record. The write response itself only carries
// the new user_id and is not trusted as the full row.
func (s *profileService) Create(ctx context.Context, payload linkupapi.CreateUserPayload) *linkupapi.Profile {
	if _, err := s.api.CreateUser(ctx, payload); err != nil {
		s.log.Warn().Err(err).Int64("tg_id", payload.TgID).Msg("Profile creation failed")
		return nil
	}
	return s.Fetch(ctx, payload.TgID)
}

// Update submits a partial update and re-reads the record by user_id.
func (s *profileService) Update(ctx context.Context, userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile {
	if err := s.api.UpdateUser(ctx, userID, payload); err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("Profile update failed")
		return nil
	}

	profile, err := s.api.GetUserDetails(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", userID).Msg("Re-read after update failed")
		return nil
	}
	return profile
}

// Complete reports whether a profile counts as fully set up. A profile is
// complete once its project name is filled in.
func (s *profileService) Complete(profile *linkupapi.Profile) bool {
	return profile != nil && profile.ProjectName != ""
}

func (s *profileService) QRImageURL(tgID int64) string {
	return s.api.QRImageURL(tgID)
}
