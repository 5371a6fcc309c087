package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/novaacademy/aula-virtual/internal/client"
	ws "github.com/novaacademy/aula-virtual/internal/websocket"
)

func loginCmd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", os.Getenv("AULA_PASSWORD"), "Account password (or AULA_PASSWORD)")
	fs.Parse(args)

	session, err := c.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s <%s> (%s)\n", session.User.Name, session.User.Email, session.User.Role)
	return nil
}

func logoutCmd(ctx context.Context, c *client.Client, _ []string) error {
	if err := c.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func whoamiCmd(ctx context.Context, c *client.Client, _ []string) error {
	if !c.IsAuthenticated() {
		return errNotLoggedIn
	}
	user, err := c.Users.Me(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	fmt.Printf("  id:       %s\n", user.ID)
	fmt.Printf("  novaId:   %s\n", user.NovaID)
	fmt.Printf("  role:     %s\n", user.Role)
	fmt.Printf("  courses:  %d\n", len(user.EnrolledCourseIDs))
	return nil
}

func validateCmd(ctx context.Context, c *client.Client, _ []string) error {
	if !c.IsAuthenticated() {
		return errNotLoggedIn
	}
	valid, err := c.ValidateToken(ctx)
	if err != nil {
		return err
	}
	if !valid {
		return errors.New("token is no longer valid")
	}
	fmt.Println("Token is valid")
	return nil
}

func watchCmd(ctx context.Context, c *client.Client, _ []string) error {
	if !c.IsAuthenticated() {
		return errNotLoggedIn
	}

	cancel := c.StartTokenValidation(ctx)
	defer cancel()

	events, err := c.Notifications.Subscribe(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Waiting for payment notifications, Ctrl+C to stop")
	for msg := range events {
		switch msg.Type {
		case ws.MessageTypePaymentSubmitted, ws.MessageTypePaymentReviewed:
			fmt.Printf("%s %s\n", msg.Type, msg.Payload)
		}
		if !c.IsAuthenticated() {
			break
		}
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `aulactl login` first")
