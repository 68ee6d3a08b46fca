package navigation

// Screen is one of the four top-level screens of the app.
type Screen string

const (
	ScreenLoading      Screen = "loading"
	ScreenOnboarding   Screen = "onboarding"
	ScreenProfileSetup Screen = "profile_setup"
	ScreenMain         Screen = "main"
)

// Tab selects the active view inside the Main screen.
type Tab string

const (
	TabQR       Tab = "qr"
	TabConnects Tab = "connects"
)

// ProfileForm carries the user-entered fields of the profile setup screen.
type ProfileForm struct {
	ProjectName string
	Role        string
	Description string
}
