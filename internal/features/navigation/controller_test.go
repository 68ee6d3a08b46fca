package navigation

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/devstub"
	connects "github.com/OneAIforWeb3/linkup/internal/features/connects/service"
	profileservice "github.com/OneAIforWeb3/linkup/internal/features/profile/service"
	"github.com/OneAIforWeb3/linkup/internal/platform/host"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

type fakeProfiles struct {
	fetch  func(tgID int64) *linkupapi.Profile
	create func(payload linkupapi.CreateUserPayload) *linkupapi.Profile
	update func(userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile
}

func (f *fakeProfiles) Fetch(ctx context.Context, tgID int64) *linkupapi.Profile {
	if f.fetch == nil {
		return nil
	}
	return f.fetch(tgID)
}

func (f *fakeProfiles) Create(ctx context.Context, payload linkupapi.CreateUserPayload) *linkupapi.Profile {
	if f.create == nil {
		return nil
	}
	return f.create(payload)
}

func (f *fakeProfiles) Update(ctx context.Context, userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile {
	if f.update == nil {
		return nil
	}
	return f.update(userID, payload)
}

func (f *fakeProfiles) Complete(profile *linkupapi.Profile) bool {
	return profile != nil && profile.ProjectName != ""
}

func (f *fakeProfiles) QRImageURL(tgID int64) string {
	return fmt.Sprintf("http://stub/api/generate-qr?tg_id=%d", tgID)
}

type fakeConnects struct {
	list    func(userID int64) []linkupapi.Connection
	connect func(self *linkupapi.Profile, qrText string) (*linkupapi.Connection, error)
}

func (f *fakeConnects) List(ctx context.Context, userID int64) []linkupapi.Connection {
	if f.list == nil {
		return []linkupapi.Connection{}
	}
	return f.list(userID)
}

func (f *fakeConnects) Connect(ctx context.Context, self *linkupapi.Profile, qrText string, opts connects.ConnectOptions) (*linkupapi.Connection, error) {
	return f.connect(self, qrText)
}

func readyAdapter(input string) *host.Adapter {
	adapter := host.NewAdapter(host.NewStandaloneBridgeIO(strings.NewReader(input), io.Discard))
	adapter.Startup()
	return adapter
}

func TestLaunchWithoutProfileGoesToOnboarding(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})

	screen, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScreenOnboarding, screen)
	assert.Equal(t, int64(999999), ctrl.Identity().ID)
}

func TestLaunchWithIncompleteProfileGoesToOnboarding(t *testing.T) {
	profiles := &fakeProfiles{
		fetch: func(int64) *linkupapi.Profile {
			return &linkupapi.Profile{UserID: 1, TgID: 999999, DisplayName: "Dev"}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})

	screen, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScreenOnboarding, screen)
}

func TestLaunchWithCompleteProfileGoesToMain(t *testing.T) {
	profiles := &fakeProfiles{
		fetch: func(tgID int64) *linkupapi.Profile {
			return &linkupapi.Profile{UserID: 1, TgID: tgID, DisplayName: "Dev", ProjectName: "Acme"}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})

	screen, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ScreenMain, screen)
	assert.Equal(t, TabQR, ctrl.ActiveTab())
	require.NotNil(t, ctrl.Profile())
	assert.Equal(t, "Acme", ctrl.Profile().ProjectName)
}

func TestLaunchWaitsForHost(t *testing.T) {
	adapter := host.NewAdapter(host.NewStandaloneBridgeIO(strings.NewReader(""), io.Discard))
	ctrl := NewController(adapter, &fakeProfiles{}, &fakeConnects{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ctrl.Launch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ScreenLoading, ctrl.Screen())
}

func TestContinueOnboardingOnlyFromOnboarding(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ScreenProfileSetup, ctrl.ContinueOnboarding())
	// Already past onboarding: a second call changes nothing.
	assert.Equal(t, ScreenProfileSetup, ctrl.ContinueOnboarding())
}

func TestSubmitProfileCreatesAndRoutesToMain(t *testing.T) {
	profiles := &fakeProfiles{
		create: func(payload linkupapi.CreateUserPayload) *linkupapi.Profile {
			assert.Equal(t, int64(999999), payload.TgID)
			assert.Equal(t, "Dev", payload.DisplayName)
			assert.Equal(t, "dev_user", payload.Username)
			return &linkupapi.Profile{UserID: 1, TgID: payload.TgID, ProjectName: payload.ProjectName}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	err = ctrl.SubmitProfile(context.Background(), ProfileForm{ProjectName: "Acme", Role: "Founder"})
	require.NoError(t, err)
	assert.Equal(t, ScreenMain, ctrl.Screen())
	assert.Equal(t, TabQR, ctrl.ActiveTab())
}

func TestSubmitProfileTrimsFields(t *testing.T) {
	profiles := &fakeProfiles{
		create: func(payload linkupapi.CreateUserPayload) *linkupapi.Profile {
			assert.Equal(t, "Acme", payload.ProjectName)
			assert.Equal(t, "Founder", payload.Role)
			assert.Equal(t, "Building things", payload.Description)
			return &linkupapi.Profile{UserID: 1, TgID: payload.TgID, ProjectName: payload.ProjectName}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	err = ctrl.SubmitProfile(context.Background(), ProfileForm{
		ProjectName: "  Acme  ",
		Role:        " Founder ",
		Description: " Building things ",
	})
	require.NoError(t, err)
}

func TestSubmitProfileUpdatesExisting(t *testing.T) {
	existing := &linkupapi.Profile{UserID: 5, TgID: 999999, ProjectName: "Old"}
	profiles := &fakeProfiles{
		fetch: func(int64) *linkupapi.Profile { return existing },
		update: func(userID int64, payload linkupapi.UpdateUserPayload) *linkupapi.Profile {
			assert.Equal(t, int64(5), userID)
			return &linkupapi.Profile{UserID: 5, TgID: 999999, ProjectName: payload.ProjectName}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)

	err = ctrl.SubmitProfile(context.Background(), ProfileForm{ProjectName: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", ctrl.Profile().ProjectName)
}

func TestSubmitProfileValidation(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	err = ctrl.SubmitProfile(context.Background(), ProfileForm{ProjectName: "   "})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
	assert.Equal(t, ScreenProfileSetup, ctrl.Screen())
}

func TestSubmitProfileFailureKeepsScreen(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	err = ctrl.SubmitProfile(context.Background(), ProfileForm{ProjectName: "Acme"})
	require.Error(t, err)
	assert.Equal(t, ScreenProfileSetup, ctrl.Screen())
	assert.False(t, ctrl.Submitting())
}

func TestSubmitProfileInFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	profiles := &fakeProfiles{
		create: func(payload linkupapi.CreateUserPayload) *linkupapi.Profile {
			atomic.AddInt32(&calls, 1)
			started <- struct{}{}
			<-release
			return &linkupapi.Profile{UserID: 1, TgID: payload.TgID, ProjectName: payload.ProjectName}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	form := ProfileForm{ProjectName: "Acme"}
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- ctrl.SubmitProfile(context.Background(), form)
	}()
	<-started

	// The second submission returns immediately and triggers no extra write.
	require.NoError(t, ctrl.SubmitProfile(context.Background(), form))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	close(release)
	require.NoError(t, <-firstDone)
	assert.Equal(t, ScreenMain, ctrl.Screen())
}

func launchToMain(t *testing.T, connectsGw *fakeConnects) *Controller {
	t.Helper()
	profiles := &fakeProfiles{
		fetch: func(tgID int64) *linkupapi.Profile {
			return &linkupapi.Profile{UserID: 1, TgID: tgID, ProjectName: "Acme"}
		},
	}
	ctrl := NewController(readyAdapter(""), profiles, connectsGw)
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	require.Equal(t, ScreenMain, ctrl.Screen())
	return ctrl
}

func TestSelectConnectsTabRefreshesList(t *testing.T) {
	connection := linkupapi.Connection{GroupID: 3, OtherUser: linkupapi.Profile{DisplayName: "Bob"}}
	ctrl := launchToMain(t, &fakeConnects{
		list: func(userID int64) []linkupapi.Connection {
			return []linkupapi.Connection{connection}
		},
	})

	ctrl.SelectTab(context.Background(), TabConnects)
	assert.Equal(t, TabConnects, ctrl.ActiveTab())
	require.Len(t, ctrl.Connections(), 1)
	assert.Equal(t, "Bob", ctrl.Connections()[0].OtherUser.DisplayName)
}

func TestSelectTabIgnoredOffMain(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)

	ctrl.SelectTab(context.Background(), TabConnects)
	assert.Equal(t, ScreenOnboarding, ctrl.Screen())
	assert.Equal(t, TabQR, ctrl.ActiveTab())
}

func TestStaleConnectionListDiscarded(t *testing.T) {
	var ctrl *Controller
	ctrl = launchToMain(t, &fakeConnects{
		list: func(userID int64) []linkupapi.Connection {
			// Navigation moves on while the fetch is in flight.
			ctrl.Back()
			return []linkupapi.Connection{{GroupID: 3}}
		},
	})

	ctrl.SelectTab(context.Background(), TabConnects)
	assert.Empty(t, ctrl.Connections())
}

func TestBackSwapsTabsOnMain(t *testing.T) {
	ctrl := launchToMain(t, &fakeConnects{})

	ctrl.SelectTab(context.Background(), TabConnects)
	require.Equal(t, TabConnects, ctrl.ActiveTab())

	ctrl.Back()
	assert.Equal(t, TabQR, ctrl.ActiveTab())
	ctrl.Back()
	assert.Equal(t, TabConnects, ctrl.ActiveTab())
	assert.Equal(t, ScreenMain, ctrl.Screen())
}

func TestBackFromProfileSetup(t *testing.T) {
	ctrl := NewController(readyAdapter(""), &fakeProfiles{}, &fakeConnects{})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)
	ctrl.ContinueOnboarding()

	ctrl.Back()
	assert.Equal(t, ScreenOnboarding, ctrl.Screen())
	// Onboarding is the floor; Back never reaches Loading.
	ctrl.Back()
	assert.Equal(t, ScreenOnboarding, ctrl.Screen())
}

func TestScanAndConnectCancelled(t *testing.T) {
	profiles := &fakeProfiles{
		fetch: func(tgID int64) *linkupapi.Profile {
			return &linkupapi.Profile{UserID: 1, TgID: tgID, ProjectName: "Acme"}
		},
	}
	// Empty scanner input reads as a cancelled scan.
	ctrl := NewController(readyAdapter("\n"), profiles, &fakeConnects{
		connect: func(*linkupapi.Profile, string) (*linkupapi.Connection, error) {
			t.Fatal("connect must not run after a cancelled scan")
			return nil, nil
		},
	})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)

	_, err = ctrl.ScanAndConnect(context.Background())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsCancelled())
}

func TestScanAndConnectRefreshesList(t *testing.T) {
	connection := &linkupapi.Connection{GroupID: 3, OtherUser: linkupapi.Profile{DisplayName: "Bob"}}
	var listCalls int32
	profiles := &fakeProfiles{
		fetch: func(tgID int64) *linkupapi.Profile {
			return &linkupapi.Profile{UserID: 1, TgID: tgID, ProjectName: "Acme"}
		},
	}
	ctrl := NewController(readyAdapter("user_99\n"), profiles, &fakeConnects{
		connect: func(self *linkupapi.Profile, qrText string) (*linkupapi.Connection, error) {
			assert.Equal(t, "user_99", qrText)
			return connection, nil
		},
		list: func(int64) []linkupapi.Connection {
			atomic.AddInt32(&listCalls, 1)
			return []linkupapi.Connection{*connection}
		},
	})
	_, err := ctrl.Launch(context.Background())
	require.NoError(t, err)

	got, err := ctrl.ScanAndConnect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, connection, got)
	assert.Equal(t, int32(1), atomic.LoadInt32(&listCalls))
	assert.Len(t, ctrl.Connections(), 1)
}

func TestQRImageURLUsesIdentity(t *testing.T) {
	ctrl := launchToMain(t, &fakeConnects{})
	assert.Equal(t, "http://stub/api/generate-qr?tg_id=999999", ctrl.QRImageURL())
}

// End-to-end through the real client and dev stub: the dev identity onboards,
// and a second launch with the same identity lands on Main.
func TestDevUserOnboardsThenRelaunchesToMain(t *testing.T) {
	srv := httptest.NewServer(devstub.New("*").Handler())
	t.Cleanup(srv.Close)

	client := linkupapi.NewClient(srv.URL, 5*time.Second)
	profiles := profileservice.NewProfileService(client)
	connectsGw := connects.NewConnectsService(client)
	ctx := context.Background()

	ctrl := NewController(readyAdapter(""), profiles, connectsGw)
	screen, err := ctrl.Launch(ctx)
	require.NoError(t, err)
	require.Equal(t, ScreenOnboarding, screen)

	ctrl.ContinueOnboarding()
	require.NoError(t, ctrl.SubmitProfile(ctx, ProfileForm{ProjectName: "Acme"}))
	require.Equal(t, ScreenMain, ctrl.Screen())
	assert.Equal(t, "Acme", ctrl.Profile().ProjectName)

	relaunch := NewController(readyAdapter(""), profiles, connectsGw)
	screen, err = relaunch.Launch(ctx)
	require.NoError(t, err)
	assert.Equal(t, ScreenMain, screen)
}
