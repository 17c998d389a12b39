package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"swift-transfer/internal/api"
	"swift-transfer/internal/auth"
	"swift-transfer/internal/transfer"
)

func testApp(t *testing.T) *App {
	t.Helper()
	client, err := api.New("http://127.0.0.1:1", auth.GetCurrentToken)
	require.NoError(t, err)
	return &App{
		API:        client,
		Uploader:   &transfer.Uploader{API: client},
		Downloader: &transfer.Downloader{API: client, Dir: t.TempDir()},
	}
}

func signedOut(t *testing.T) {
	t.Helper()
	auth.SetCurrentToken("")
	t.Cleanup(func() { auth.SetCurrentToken("") })
}

func TestGuardRedirectsProtectedRouteToLogin(t *testing.T) {
	req := require.New(t)
	signedOut(t)

	m := NewRootModel(testApp(t))
	m.navigate(routeList, "")

	req.Equal(routeLogin, m.state)
	req.Equal(routeList, m.pendingRoute)
}

func TestGuardRestoresPendingRouteAfterSignIn(t *testing.T) {
	req := require.New(t)
	signedOut(t)

	root := NewRootModel(testApp(t))
	root.navigate(routeList, "")
	req.Equal(routeLogin, root.state)

	// sign-in succeeded: the token is in place and the result message lands
	auth.SetCurrentToken("tok")
	updated, _ := root.Update(loginResultMsg{})
	got := updated.(RootModel)
	req.Equal(routeList, got.state)
}

func TestGuardKeepsLoginOnFailure(t *testing.T) {
	req := require.New(t)
	signedOut(t)

	root := NewRootModel(testApp(t))
	root.navigate(routeUpload, "")
	req.Equal(routeLogin, root.state)

	updated, _ := root.Update(loginResultMsg{err: errors.New("bad credentials")})
	got := updated.(RootModel)
	req.Equal(routeLogin, got.state)
	req.Error(got.Login.Err)
	req.False(got.Login.busy)
}

func TestGuardPassesSignedInUserThrough(t *testing.T) {
	req := require.New(t)
	signedOut(t)
	auth.SetCurrentToken("tok")

	m := NewRootModel(testApp(t))
	m.navigate(routeList, "")
	req.Equal(routeList, m.state)
}

func TestUnprotectedDetailRouteNeedsNoToken(t *testing.T) {
	req := require.New(t)
	signedOut(t)

	m := NewRootModel(testApp(t))
	m.navigate(routeDetail, "t-9")
	req.Equal(routeDetail, m.state)
	req.Equal("t-9", m.Detail.TransferID)
}
