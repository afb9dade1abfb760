package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrsteele09/go-backoffice-core/app"
	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/server"
	"github.com/jrsteele09/go-backoffice-core/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func newTestShell(t *testing.T) (*shell, *bytes.Buffer) {
	t.Helper()
	handler, err := server.NewInMemory(config.New())
	require.NoError(t, err)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("API_BASE_URL", srv.URL+server.RouteAPIPrefix)

	a, err := app.New(context.Background(), config.New(), app.WithSnapshotRepo(repofakes.NewFakeSnapshotRepo()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	var out bytes.Buffer
	return newShell(a, &out), &out
}

func TestShell_Session(t *testing.T) {
	s, out := newTestShell(t)
	script := strings.Join([]string{
		"whoami",
		"login empleado empleado",
		"menu",
		"go /clientes",
		"create clientes nombre=Ana",
		"logout",
		"quit",
	}, "\n")

	require.NoError(t, s.run(context.Background(), strings.NewReader(script)))
	text := out.String()
	require.Contains(t, text, "not signed in")
	require.Contains(t, text, "* signed in as empleado (EMPLOYEE)")
	require.Contains(t, text, "Orders")
	require.Contains(t, text, "redirected to /home")
	require.Contains(t, text, "[ERROR] Access Denied: You do not have permission to access this page")
	require.Contains(t, text, "[ERROR] Access Denied: Only administrators can create clientes")
	require.Contains(t, text, "* signed out")
}

func TestShell_AdminCRUD(t *testing.T) {
	s, out := newTestShell(t)
	script := strings.Join([]string{
		"login admin admin",
		"create productos nombre=Mesa precio=120",
		"list productos",
		"bogus",
	}, "\n")

	require.NoError(t, s.run(context.Background(), strings.NewReader(script)))
	text := out.String()
	require.Contains(t, text, `[SUCCESS] Item Created: productos "Mesa" was created successfully`)
	require.Contains(t, text, "nombre=Mesa")
	require.Contains(t, text, "precio=120")
	require.Contains(t, text, "1 record(s)")
	require.Contains(t, text, `unknown command "bogus"`)
}

func TestParseRecord(t *testing.T) {
	record, err := parseRecord([]string{"nombre=Ana", "edad=30", "activo=true"})
	require.NoError(t, err)
	require.Equal(t, app.Record{"nombre": "Ana", "edad": float64(30), "activo": true}, record)

	_, err = parseRecord([]string{"oops"})
	require.Error(t, err)
}
