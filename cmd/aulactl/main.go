package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/novaacademy/aula-virtual/internal/client"
	"github.com/novaacademy/aula-virtual/internal/config"
	"github.com/novaacademy/aula-virtual/internal/logger"
)

type command func(ctx context.Context, c *client.Client, args []string) error

var commands = map[string]command{
	"login":      loginCmd,
	"logout":     logoutCmd,
	"whoami":     whoamiCmd,
	"validate":   validateCmd,
	"watch":      watchCmd,
	"categories": categoriesCmd,
	"courses":    coursesCmd,
	"course":     courseCmd,
	"lives":      livesCmd,
	"users":      usersCmd,
	"assign":     assignCmd,
	"access":     accessCmd,
	"purchases":  purchasesCmd,
	"export":     exportCmd,
	"pay":        payCmd,
	"payments":   paymentsCmd,
	"review":     reviewCmd,
	"voucher":    voucherCmd,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		printUsage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console", Output: "stderr"})
	defer log.Sync()

	c := client.New(cfg,
		client.WithStore(client.NewFileStore(cfg.SessionFile)),
		client.WithLogger(log),
		client.WithRedirector(client.RedirectFunc(func(reason string) {
			fmt.Fprintf(os.Stderr, "Session ended (%s). Run `aulactl login` again.\n", reason)
		})),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd(ctx, c, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`aulactl - command line client for the Aula Virtual platform

USAGE:
  aulactl <command> [options]

SESSION:
  login       Log in and store the session (--email, --password)
  logout      End the session
  whoami      Show the logged in user
  validate    Ask the server whether the stored token is still valid
  watch       Stream payment notifications, validating the token in the background

CATALOG:
  categories  List course categories
  courses     List courses (--category, --teacher)
  course      Show a course with details (--id)
  lives       List lives (--zoom)
  users       List users (--role), admin only

ENROLLMENT:
  assign      Assign courses to students (--course, --student, --renewal)
  access      Check whether a student can watch a course (--course, --student)
  purchases   List purchases (--student, --course)
  export      Download purchases as XLSX (--out, --student, --course)

PAYMENTS:
  pay         Upload a payment voucher (--file, --amount, --reason)
  payments    List payments (--student)
  review      Approve or reject a payment (--id, --status)
  voucher     Download a payment voucher (--id, --out)

ENVIRONMENT:
  AULA_API_URL        Backend API URL (default: http://localhost:8080/api/v1)
  AULA_SESSION_FILE   Where the session is stored (default: ~/.config/aulactl/session.json)
  AULA_LOG_LEVEL      debug, info, warn or error (default: warn)

EXAMPLES:
  # Give two students a year of access to a course
  aulactl assign --course=<id> --student=<id>,<id> --renewal=2027-01-31

  # Review the pending payments while they arrive
  aulactl watch`)
}
