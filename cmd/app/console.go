package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/features/navigation"
	"github.com/OneAIforWeb3/linkup/internal/platform/host"
)

// runConsole drives the navigation controller from the terminal, one screen
// per iteration. It is the development stand-in for the webapp views.
func runConsole(ctx context.Context, ctrl *navigation.Controller, adapter *host.Adapter) {
	c := &console{
		ctrl: ctrl,
		host: adapter,
		in:   bufio.NewScanner(os.Stdin),
		out:  os.Stdout,
	}
	c.run(ctx)
}

type console struct {
	ctrl *navigation.Controller
	host *host.Adapter
	in   *bufio.Scanner
	out  io.Writer
}

func (c *console) run(ctx context.Context) {
	for ctx.Err() == nil {
		switch c.ctrl.Screen() {
		case navigation.ScreenOnboarding:
			if done := c.onboarding(); done {
				return
			}
		case navigation.ScreenProfileSetup:
			if done := c.profileSetup(ctx); done {
				return
			}
		case navigation.ScreenMain:
			if done := c.main(ctx); done {
				return
			}
		default:
			fmt.Fprintln(c.out, "loading...")
			return
		}
	}
}

func (c *console) onboarding() bool {
	identity := c.ctrl.Identity()
	fmt.Fprintf(c.out, "\nWelcome to LinkUp, %s!\n", identity.FirstName)
	fmt.Fprintln(c.out, "Connect with people at events by scanning their QR codes.")

	c.host.MainButton.Show("Get Started")
	answer := c.prompt("press enter to get started (or 'quit'): ")
	c.host.MainButton.Hide()
	if answer == "quit" {
		c.host.CloseApp()
		return true
	}
	c.ctrl.ContinueOnboarding()
	return false
}

func (c *console) profileSetup(ctx context.Context) bool {
	fmt.Fprintln(c.out, "\nSet up your profile")
	form := navigation.ProfileForm{
		ProjectName: c.prompt("project name: "),
		Role:        c.prompt("role: "),
		Description: c.prompt("bio: "),
	}

	c.host.MainButton.Show("Save Profile")
	c.host.MainButton.ShowProgress(false)
	err := c.ctrl.SubmitProfile(ctx, form)
	c.host.MainButton.HideProgress()
	c.host.MainButton.Hide()

	if err != nil {
		c.host.Haptic.Notify(host.NotifyError)
		c.host.ShowAlert(ctx, err.Error())
		return false
	}
	c.host.Haptic.Notify(host.NotifySuccess)
	return false
}

func (c *console) main(ctx context.Context) bool {
	switch c.ctrl.ActiveTab() {
	case navigation.TabConnects:
		c.renderConnects()
	default:
		c.renderQR()
	}

	switch c.prompt("\n[qr|connects|scan|refresh|back|quit] > ") {
	case "qr":
		c.host.Haptic.SelectionChanged()
		c.ctrl.SelectTab(ctx, navigation.TabQR)
	case "connects":
		c.host.Haptic.SelectionChanged()
		c.ctrl.SelectTab(ctx, navigation.TabConnects)
	case "scan":
		c.scan(ctx)
	case "refresh":
		c.ctrl.RefreshConnections(ctx)
	case "back":
		c.ctrl.Back()
	case "quit":
		c.host.CloseApp()
		return true
	}
	return false
}

func (c *console) renderQR() {
	profile := c.ctrl.Profile()
	fmt.Fprintln(c.out, "\n== Your QR ==")
	if profile != nil {
		fmt.Fprintf(c.out, "%s | %s | %s\n", profile.DisplayName, profile.Role, profile.ProjectName)
	}
	fmt.Fprintf(c.out, "QR image: %s\n", c.ctrl.QRImageURL())
}

func (c *console) renderConnects() {
	connections := c.ctrl.Connections()
	fmt.Fprintf(c.out, "\n== Connections (%d) ==\n", len(connections))
	for i, connection := range connections {
		other := connection.OtherUser
		fmt.Fprintf(c.out, "%d. %s | %s | %s\n", i+1, other.DisplayName, other.Role, other.ProjectName)
	}
}

func (c *console) scan(ctx context.Context) {
	connection, err := c.ctrl.ScanAndConnect(ctx)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.IsCancelled() {
			fmt.Fprintln(c.out, "scan cancelled")
			return
		}
		c.host.Haptic.Notify(host.NotifyError)
		c.host.ShowAlert(ctx, err.Error())
		return
	}
	c.host.Haptic.Notify(host.NotifySuccess)
	fmt.Fprintf(c.out, "connected with %s!\n", connection.OtherUser.DisplayName)
}

func (c *console) prompt(label string) string {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		return "quit"
	}
	return strings.TrimSpace(c.in.Text())
}
