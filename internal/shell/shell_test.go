package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/mockapi"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

func newShell(t *testing.T) (*Shell, *app.App, *bytes.Buffer, *mockapi.Server) {
	t.Helper()

	srv, base := testutil.StartBackend(t)
	require.NoError(t, srv.AddUser("Ada", "ada@example.com", "secret1", "5551234567"))

	cfg := config.Default()
	cfg.APIURL = base
	a, err := app.New(cfg,
		app.WithPersister(store.NewMemory()),
		app.WithIDs(ident.NewFixedGenerator("user-1")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	require.NoError(t, a.Start(context.Background()))

	var out bytes.Buffer
	return New(a, &out, WithPrompt("")), a, &out, srv
}

func exec(t *testing.T, s *Shell, out *bytes.Buffer, line string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, s.Exec(context.Background(), line), line)
	return out.String()
}

func TestExec_Catalog(t *testing.T) {
	s, a, out, _ := newShell(t)

	got := exec(t, s, out, "category Kids")
	assert.Contains(t, got, "Chuck Taylor All Star")
	assert.Equal(t, 1, strings.Count(got, "\n"))
	assert.Equal(t, "Kids", a.Query.Search().ActiveCategory)

	got = exec(t, s, out, "search boost")
	assert.Contains(t, got, "Ultraboost 22")
	assert.Contains(t, got, "Rs 18999.00")

	got = exec(t, s, out, "search nothing-matches")
	assert.Equal(t, "no items\n", got)

	got = exec(t, s, out, "all")
	assert.Equal(t, len(mockapi.SeedItems()), strings.Count(got, "\n"))
}

func TestExec_Suggestions(t *testing.T) {
	s, a, out, _ := newShell(t)

	assert.Equal(t, "", exec(t, s, out, "type s"))
	assert.Equal(t, "  Chuck Taylor All Star\n  Ultraboost 22\n", exec(t, s, out, "type st"))

	got := exec(t, s, out, "pick Ultraboost 22")
	assert.Contains(t, got, "Ultraboost 22")
	assert.False(t, a.Query.Search().ShowSuggestions)
	assert.Equal(t, "Ultraboost 22", a.Query.Search().Text)
}

func TestExec_BagAndWishlist(t *testing.T) {
	s, a, out, _ := newShell(t)

	exec(t, s, out, "bag add 1")
	exec(t, s, out, "bag add 1")
	exec(t, s, out, "bag add 3")
	assert.Equal(t, []int64{1, 1, 3}, a.Store.GetState().Bag, "repeated adds are kept without bag dedup")

	got := exec(t, s, out, "bag ls")
	assert.Contains(t, got, "Air Max 270")
	assert.Contains(t, got, "total: Rs 21998.00")

	exec(t, s, out, "bag rm 1")
	assert.Equal(t, []int64{3}, a.Store.GetState().Bag, "remove drops every entry of the id")
	exec(t, s, out, "bag rm 1")
	assert.Equal(t, []int64{3}, a.Store.GetState().Bag)

	exec(t, s, out, "wish add 6")
	assert.Contains(t, exec(t, s, out, "wish ls"), "Old Skool")
	exec(t, s, out, "wish rm 6")
	assert.Equal(t, "no items\n", exec(t, s, out, "wish ls"))
}

func TestExec_SessionAndOrder(t *testing.T) {
	s, a, out, _ := newShell(t)

	assert.Equal(t, "anonymous\n", exec(t, s, out, "whoami"))
	assert.Equal(t, "/bag -> /auth (auth)\n", exec(t, s, out, "open /bag"))

	assert.Equal(t, "signed in as ada@example.com\n", exec(t, s, out, "login ada@example.com secret1"))
	assert.Equal(t, "ada <ada@example.com>\n", exec(t, s, out, "whoami"))

	exec(t, s, out, "bag add 2")
	assert.Equal(t, "saved address 1\n", exec(t, s, out, "addr add Ada; 1 Loop Rd; Pune; MH; 411001"))
	assert.Equal(t, "* 1  Ada, 1 Loop Rd, Pune, MH - 411001\n", exec(t, s, out, "addr ls"))

	got := exec(t, s, out, "order upi")
	assert.Contains(t, got, "placed ORD-")
	assert.Contains(t, got, "1 items, Rs 18999.00")
	assert.Empty(t, a.Store.GetState().Bag)
	assert.Equal(t, "order-confirmation", a.Location().View)

	assert.Contains(t, exec(t, s, out, "orders"), "PLACED")

	assert.Equal(t, "signed out\n", exec(t, s, out, "logout"))
	assert.Equal(t, "auth", a.Location().View)
}

func TestExec_Errors(t *testing.T) {
	s, _, _, _ := newShell(t)
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"dance", `unknown command "dance" (try help)`},
		{"bag add x", "usage: bag add|rm ID | bag ls"},
		{"login only-email", "usage: login EMAIL PASSWORD"},
		{"login bad secret1", "Email is invalid"},
		{"login ada@example.com wrongpw", "Invalid email or password"},
		{"register a@b.com pw 123 Al", "Password must be at least 6 characters; Phone number must be exactly 10 digits"},
		{"orders", "no active session"},
		{"search   ", "empty query"},
		{"open /nowhere", "no such view: /nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			err := s.Exec(ctx, tt.line)
			require.Error(t, err)
			assert.Contains(t, Describe(err), tt.want)
		})
	}
}

func TestRun(t *testing.T) {
	s, a, out, _ := newShell(t)
	s.prompt = "> "

	in := strings.NewReader("# comment\n\nbag add 1\nbogus\nquit\nbag add 2\n")
	require.NoError(t, s.Run(context.Background(), in))

	assert.Equal(t, []int64{1}, a.Store.GetState().Bag, "commands after quit are not run")
	assert.Contains(t, out.String(), `error: unknown command "bogus"`)
	assert.Equal(t, 5, strings.Count(out.String(), "> "))
}

func TestHelp(t *testing.T) {
	s, _, out, _ := newShell(t)
	got := exec(t, s, out, "help")
	for _, c := range commands {
		assert.Contains(t, got, c.usage)
	}
	assert.ErrorIs(t, s.Exec(context.Background(), "quit"), ErrQuit)
}
