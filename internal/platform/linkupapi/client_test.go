package linkupapi_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/devstub"
	"github.com/OneAIforWeb3/linkup/internal/platform/linkupapi"
)

func newTestClient(t *testing.T) *linkupapi.Client {
	t.Helper()
	srv := httptest.NewServer(devstub.New("*").Handler())
	t.Cleanup(srv.Close)
	return linkupapi.NewClient(srv.URL, 5*time.Second)
}

func createUser(t *testing.T, client *linkupapi.Client, tgID int64, name, project string) int64 {
	t.Helper()
	userID, err := client.CreateUser(context.Background(), linkupapi.CreateUserPayload{
		TgID:        tgID,
		Username:    fmt.Sprintf("user%d", tgID),
		DisplayName: name,
		ProjectName: project,
		Role:        "Founder",
	})
	require.NoError(t, err)
	return userID
}

func TestCreateAndFetchUser(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	userID := createUser(t, client, 5094393032, "Alice", "EventCRM")
	assert.Equal(t, int64(1), userID)

	profile, err := client.GetUserByTgID(ctx, 5094393032)
	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, "EventCRM", profile.ProjectName)
	assert.NotEmpty(t, profile.CreatedAt)

	byID, err := client.GetUserDetails(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, profile.TgID, byID.TgID)
}

func TestGetUserByTgIDNotFound(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetUserByTgID(context.Background(), 404404)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestCreateUserDuplicateTgID(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	createUser(t, client, 777, "First", "P1")
	_, err := client.CreateUser(ctx, linkupapi.CreateUserPayload{TgID: 777, DisplayName: "Second"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeAlreadyExists, appErr.Code)
}

func TestUpdateUserPartial(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	userID := createUser(t, client, 100, "Bob", "ProjectX")

	err := client.UpdateUser(ctx, userID, linkupapi.UpdateUserPayload{Role: "CTO"})
	require.NoError(t, err)

	profile, err := client.GetUserDetails(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "CTO", profile.Role)
	// Omitted fields stay untouched.
	assert.Equal(t, "Bob", profile.DisplayName)
	assert.Equal(t, "ProjectX", profile.ProjectName)
}

func TestUpdateUserNotFound(t *testing.T) {
	client := newTestClient(t)

	err := client.UpdateUser(context.Background(), 999, linkupapi.UpdateUserPayload{Role: "CTO"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestDeleteUser(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	userID := createUser(t, client, 200, "Temp", "P")
	require.NoError(t, client.DeleteUser(ctx, userID))

	_, err := client.GetUserDetails(ctx, userID)
	require.Error(t, err)
}

func TestGroupFlow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	aliceID := createUser(t, client, 1001, "Alice", "EventCRM")
	bobID := createUser(t, client, 1002, "Bob", "ChainPay")

	groupID, err := client.CreateGroup(ctx, linkupapi.CreateGroupPayload{
		GroupLink: "https://t.me/+abcdef",
		User1ID:   aliceID,
		User2ID:   bobID,
		EventName: "GopherCon",
	})
	require.NoError(t, err)

	details, err := client.GetGroupDetails(ctx, groupID)
	require.NoError(t, err)
	assert.Equal(t, "GopherCon", details.Group.EventName)
	assert.Len(t, details.Participants, 2)

	participants, err := client.CheckParticipants(ctx, groupID)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, aliceID, participants[0].User1ID)
	assert.Equal(t, bobID, participants[0].User2ID)

	connections, err := client.GetUserGroups(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, connections, 1)
	assert.Equal(t, bobID, connections[0].OtherUserID)
	assert.Equal(t, "Bob", connections[0].OtherUser.DisplayName)
}

func TestCreateGroupUnknownUser(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	aliceID := createUser(t, client, 1, "Alice", "P")
	_, err := client.CreateGroup(ctx, linkupapi.CreateGroupPayload{
		GroupLink: "https://t.me/+x",
		User1ID:   aliceID,
		User2ID:   42,
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.True(t, appErr.IsNotFound())
}

func TestGetUserGroupsNewestFirst(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	aliceID := createUser(t, client, 1, "Alice", "P")
	bobID := createUser(t, client, 2, "Bob", "P")
	carolID := createUser(t, client, 3, "Carol", "P")

	first, err := client.CreateGroup(ctx, linkupapi.CreateGroupPayload{
		GroupLink: "https://t.me/+a", User1ID: aliceID, User2ID: bobID,
	})
	require.NoError(t, err)
	second, err := client.CreateGroup(ctx, linkupapi.CreateGroupPayload{
		GroupLink: "https://t.me/+b", User1ID: carolID, User2ID: aliceID,
	})
	require.NoError(t, err)

	connections, err := client.GetUserGroups(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, connections, 2)
	assert.Equal(t, second, connections[0].GroupID)
	assert.Equal(t, first, connections[1].GroupID)
}

func TestQRImageURL(t *testing.T) {
	client := linkupapi.NewClient("http://localhost:8000", time.Second)
	assert.Equal(t, "http://localhost:8000/api/generate-qr?tg_id=42", client.QRImageURL(42))
}
