package navigation

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
	"github.com/OneAIforWeb3/linkup/internal/common/validation"
	connects "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	"github.com/OneAIforWeb3/linkup/internal/platform/host"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

// ProfileGateway is the profile surface the controller routes on.
type ProfileGateway interface {
	Fetch(ctx context.Context, tgID int64) *linkupapi.Profile
	Create(ctx context.Context, payload linkupapi.CreateUserPayload) *linkupapi.Profile
	Update(ctx context.Context, userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile
	Complete(profile *linkupapi.Profile) bool
	QRImageURL(tgID int64) string
}

// ConnectsGateway is the connections surface the controller refreshes from.
type ConnectsGateway interface {
	List(ctx context.Context, userID int64) []linkupapi.Connection
	Connect(ctx context.Context, self *linkupapi.Profile, qrText string, opts connects.ConnectOptions) (*linkupapi.Connection, error)
}

// Controller owns the client-side navigation state: which screen is active,
// the single current profile and the single current connection list. Views
// read through accessors and never mutate; every fetched value replaces the
// previous one wholesale.
type Controller struct {
	host     *host.Adapter
	profiles ProfileGateway
	connects ConnectsGateway
	log      zerolog.Logger

	mu          sync.Mutex
	screen      Screen
	tab         Tab
	prevTab     Tab
	identity    host.Identity
	profile     *linkupapi.Profile
	connections []linkupapi.Connection
	submitting  bool
	epoch       uint64
}

func NewController(hostAdapter *host.Adapter, profiles ProfileGateway, connectsGw ConnectsGateway) *Controller {
	return &Controller{
		host:        hostAdapter,
		profiles:    profiles,
		connects:    connectsGw,
		log:         logger.Component("navigation"),
		screen:      ScreenLoading,
		tab:         TabQR,
		prevTab:     TabQR,
		connections: []linkupapi.Connection{},
	}
}

// Launch runs the initial navigation decision: wait until the host is ready
// and an identity is available, fetch the profile once, then route. A
// complete profile goes straight to Main (QR tab); anything else, including
// a failed lookup, fails open toward Onboarding. The profile fetch strictly
// precedes the routing decision; Main is never shown speculatively.
func (c *Controller) Launch(ctx context.Context) (Screen, error) {
	if err := c.host.WaitReady(ctx); err != nil {
		return c.Screen(), err
	}

	identity := c.host.Identity()

	c.mu.Lock()
	c.identity = identity
	startEpoch := c.epoch
	c.mu.Unlock()

	profile := c.profiles.Fetch(ctx, identity.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != startEpoch {
		// Navigation moved on while the fetch was in flight; the late
		// result must not be applied to a screen that is no longer active.
		return c.screen, nil
	}

	c.profile = profile
	if c.profiles.Complete(profile) {
		c.setScreenLocked(ScreenMain)
		c.tab = TabQR
		c.prevTab = TabQR
	} else {
		c.setScreenLocked(ScreenOnboarding)
	}
	c.log.Info().Str("screen", string(c.screen)).Int64("tg_id", identity.ID).Msg("Launch routed")
	return c.screen, nil
}

// ContinueOnboarding advances from Onboarding to ProfileSetup on the
// explicit user action. From any other screen it is a no-op.
func (c *Controller) ContinueOnboarding() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == ScreenOnboarding {
		c.setScreenLocked(ScreenProfileSetup)
	}
	return c.screen
}

// SubmitProfile validates and saves the profile form, creating the profile
// when none exists and updating it otherwise, then advances to Main. While
// a submission is in flight further submissions have no additional effect;
// this in-flight flag is the only concurrency guard in the system. A failed
// save keeps the current screen so the user can resubmit.
func (c *Controller) SubmitProfile(ctx context.Context, form ProfileForm) error {
	form.ProjectName = strings.TrimSpace(form.ProjectName)
	form.Role = strings.TrimSpace(form.Role)
	form.Description = strings.TrimSpace(form.Description)

	if err := validation.ValidateProjectName(form.ProjectName); err != nil {
		return apperrors.NewValidationError("project_name", err.Error())
	}
	if err := validation.ValidateRole(form.Role); err != nil {
		return apperrors.NewValidationError("role", err.Error())
	}
	if err := validation.ValidateDescription(form.Description); err != nil {
		return apperrors.NewValidationError("description", err.Error())
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return nil
	}
	c.submitting = true
	startEpoch := c.epoch
	identity := c.identity
	existing := c.profile
	c.mu.Unlock()

	var saved *linkupapi.Profile
	if existing == nil {
		saved = c.profiles.Create(ctx, linkupapi.CreateUserPayload{
			TgID:        identity.ID,
			Username:    identity.Username,
			DisplayName: identity.FirstName,
			ProjectName: form.ProjectName,
			Role:        form.Role,
			Description: form.Description,
		})
	} else {
		saved = c.profiles.Update(ctx, existing.UserID, linkupapi.UpdateUserPayload{
			Username:    identity.Username,
			DisplayName: identity.FirstName,
			ProjectName: form.ProjectName,
			Role:        form.Role,
			Description: form.Description,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false

	if saved == nil {
		return apperrors.New(apperrors.ErrCodeExternalAPI, "profile save failed")
	}

	c.profile = saved
	if c.epoch == startEpoch {
		c.setScreenLocked(ScreenMain)
		c.tab = TabQR
		c.prevTab = TabQR
	}
	return nil
}

// SelectTab switches the active Main tab. Entering the Connects tab
// refreshes the connection list.
func (c *Controller) SelectTab(ctx context.Context, tab Tab) {
	c.mu.Lock()
	if c.screen != ScreenMain || c.tab == tab {
		c.mu.Unlock()
		return
	}
	c.prevTab = c.tab
	c.tab = tab
	c.epoch++
	c.mu.Unlock()

	if tab == TabConnects {
		c.RefreshConnections(ctx)
	}
}

// Back returns to the previously active tab on Main, or steps ProfileSetup
// back to Onboarding. It never returns to Loading.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.screen {
	case ScreenMain:
		c.tab, c.prevTab = c.prevTab, c.tab
		c.epoch++
	case ScreenProfileSetup:
		c.setScreenLocked(ScreenOnboarding)
	}
}

// RefreshConnections replaces the connection list wholesale. A result that
// resolves after the user has navigated away is discarded.
func (c *Controller) RefreshConnections(ctx context.Context) {
	c.mu.Lock()
	profile := c.profile
	startEpoch := c.epoch
	c.mu.Unlock()

	if profile == nil {
		return
	}

	connections := c.connects.List(ctx, profile.UserID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != startEpoch {
		c.log.Debug().Msg("Discarding stale connection list")
		return
	}
	c.connections = connections
}

// ScanAndConnect opens the QR scanner and records a connection with the
// scanned user. Cancellation surfaces to the caller for an in-place retry
// prompt; a successful connect refreshes the list.
func (c *Controller) ScanAndConnect(ctx context.Context) (*linkupapi.Connection, error) {
	c.mu.Lock()
	profile := c.profile
	c.mu.Unlock()

	qrText, err := c.host.ScanQR(ctx)
	if err != nil {
		return nil, err
	}

	connection, err := c.connects.Connect(ctx, profile, qrText, connects.ConnectOptions{})
	if err != nil {
		return nil, err
	}

	c.RefreshConnections(ctx)
	return connection, nil
}

// setScreenLocked changes the active screen and invalidates in-flight
// fetches. Callers must hold c.mu.
func (c *Controller) setScreenLocked(screen Screen) {
	if c.screen != screen {
		c.screen = screen
		c.epoch++
	}
}

func (c *Controller) Screen() Screen {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.screen
}

func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tab
}

func (c *Controller) Identity() host.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

func (c *Controller) Profile() *linkupapi.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

func (c *Controller) Connections() []linkupapi.Connection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connections
}

// QRImageURL returns the display URL of the current user's QR code.
func (c *Controller) QRImageURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profiles.QRImageURL(c.identity.ID)
}

// Submitting reports whether a profile save is in flight, used by views to
// disable the submit control.
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}
