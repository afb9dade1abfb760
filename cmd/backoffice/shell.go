package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-backoffice-core/app"
	"github.com/jrsteele09/go-backoffice-core/notifications"
	"github.com/jrsteele09/go-backoffice-core/sessions"
)

const helpText = `commands:
  login <username> <password>
  logout
  whoami
  verify
  menu
  go <route>
  list <resource>
  create <resource> key=value...
  update <resource> <id> key=value...
  delete <resource> <id>
  notes
  dismiss <id>|all
  help
  quit`

// shell is a line oriented front end over an App. Notifications are printed
// as they are published.
type shell struct {
	app   *app.App
	out   io.Writer
	route string
	seen  map[string]struct{}
}

func newShell(a *app.App, out io.Writer) *shell {
	return &shell{app: a, out: out, route: a.Config.GetLoginRoute(), seen: map[string]struct{}{}}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	unsubscribeNotes := s.app.Bus.Subscribe(s.printNew)
	defer unsubscribeNotes()
	unsubscribeSession := s.app.Store.Subscribe(func(id sessions.Identity) {
		if id.Authenticated {
			s.printf("* signed in as %s (%s)\n", id.Username, id.Role)
			return
		}
		s.printf("* signed out\n")
	})
	defer unsubscribeSession()

	scanner := bufio.NewScanner(in)
	for {
		s.printf("%s> ", s.route)
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.exec(ctx, fields[0], fields[1:]); err != nil {
			s.printf("error: %v\n", err)
		}
	}
}

func (s *shell) printNew(active []notifications.Notification) {
	current := make(map[string]struct{}, len(active))
	for _, n := range active {
		current[n.ID] = struct{}{}
		if _, ok := s.seen[n.ID]; ok {
			continue
		}
		s.printf("[%s] %s: %s\n", strings.ToUpper(string(n.Kind)), n.Title, n.Message)
	}
	s.seen = current
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printf("%s\n", helpText)
	case "login":
		if len(args) != 2 {
			return fmt.Errorf("usage: login <username> <password>")
		}
		if err := s.app.Store.Login(ctx, args[0], args[1]); err != nil {
			return err
		}
		s.navigate(s.app.Config.GetHomeRoute())
	case "logout":
		if err := s.app.Store.Logout(ctx); err != nil {
			return err
		}
		s.route = s.app.Config.GetLoginRoute()
	case "whoami":
		state := s.app.Store.State()
		if !state.Authenticated {
			s.printf("not signed in\n")
			return nil
		}
		s.printf("%s (%s)\n", state.Username, state.Role)
	case "verify":
		return s.app.Store.Verify(ctx)
	case "menu":
		for _, option := range s.app.Authorizer.MenuForCurrentSession() {
			s.printf("  %-14s %-16s %s\n", option.Label, option.Route, option.Description)
		}
	case "go":
		if len(args) != 1 {
			return fmt.Errorf("usage: go <route>")
		}
		s.navigate(args[0])
	case "list":
		if len(args) != 1 {
			return fmt.Errorf("usage: list <resource>")
		}
		records, err := s.app.List(ctx, args[0])
		if err != nil {
			return err
		}
		for _, record := range records {
			s.printf("  %s\n", formatRecord(record))
		}
		s.printf("%d record(s)\n", len(records))
	case "create":
		if len(args) < 1 {
			return fmt.Errorf("usage: create <resource> key=value...")
		}
		record, err := parseRecord(args[1:])
		if err != nil {
			return err
		}
		_, err = s.app.Create(ctx, args[0], record, keys(record)...)
		return err
	case "update":
		if len(args) < 2 {
			return fmt.Errorf("usage: update <resource> <id> key=value...")
		}
		record, err := parseRecord(args[2:])
		if err != nil {
			return err
		}
		_, err = s.app.Update(ctx, args[0], args[1], record, keys(record)...)
		return err
	case "delete":
		if len(args) != 2 {
			return fmt.Errorf("usage: delete <resource> <id>")
		}
		return s.app.Delete(ctx, args[0], args[1], "")
	case "notes":
		for _, n := range s.app.Bus.Active() {
			s.printf("  %s [%s] %s: %s\n", n.ID, n.Kind, n.Title, n.Message)
		}
	case "dismiss":
		if len(args) != 1 {
			return fmt.Errorf("usage: dismiss <id>|all")
		}
		if args[0] == "all" {
			s.app.Bus.DismissAll()
		} else {
			s.app.Bus.Dismiss(args[0])
		}
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (s *shell) navigate(route string) {
	decision := s.app.Guard.Check(route)
	s.route = decision.Target()
	if !decision.Allowed() {
		s.printf("redirected to %s\n", s.route)
	}
}

// parseRecord turns key=value pairs into a record. Numeric and boolean values
// keep their JSON types.
func parseRecord(pairs []string) (app.Record, error) {
	record := app.Record{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		record[key] = parseValue(value)
	}
	return record, nil
}

func parseValue(value string) any {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}

func keys(record app.Record) []string {
	out := make([]string, 0, len(record))
	for k := range record {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func formatRecord(record app.Record) string {
	parts := make([]string, 0, len(record))
	for _, k := range keys(record) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, record[k]))
	}
	return strings.Join(parts, " ")
}
