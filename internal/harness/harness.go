package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/ident"
	"github.com/roach88/storefront/internal/mockapi"
	"github.com/roach88/storefront/internal/shell"
	"github.com/roach88/storefront/internal/state"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

// Harness holds one scenario's running session.
type Harness struct {
	backend *mockapi.Server
	app     *app.App
	mirror  *store.Store
	shell   *shell.Shell
	out     bytes.Buffer
}

// Run executes a scenario and returns its result.
//
// Each run gets a fresh mock backend, a fresh in-memory session mirror and
// a fixed clock, so the trace depends only on the scenario.
//
// Execution flow:
//  1. Start the mock backend with the scenario's users and outage
//  2. Seed the session mirror
//  3. Start the app (session reset, initial catalog load)
//  4. Run each step through the shell, recording a snapshot after it
//  5. Evaluate assertions
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	clock := testutil.NewManualClock(testutil.Epoch)
	backend := mockapi.New(
		mockapi.WithBcryptCost(bcrypt.MinCost),
		mockapi.WithIDs(ident.NewSequenceGenerator("order")),
		mockapi.WithClock(clock.Now),
	)
	for _, u := range scenario.Setup.Users {
		if err := backend.AddUser(u.Name, u.Email, u.Password, u.Phone); err != nil {
			return nil, fmt.Errorf("failed to add user %s: %w", u.Email, err)
		}
	}
	backend.FailCatalog(scenario.Setup.CatalogFailures)

	ts := httptest.NewServer(adaptor.FiberApp(backend.App()))
	defer ts.Close()

	mirror, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer mirror.Close()

	if p := scenario.Setup.Persisted; p != nil {
		user := state.User{ID: "persisted", Name: p.Email, Email: p.Email}
		if err := mirror.SaveSession(ctx, p.Token, user); err != nil {
			return nil, fmt.Errorf("failed to seed session: %w", err)
		}
	}

	cfg := config.Default()
	cfg.APIURL = ts.URL + "/api"
	a, err := app.New(cfg,
		app.WithPersister(mirror),
		app.WithIDs(ident.NewSequenceGenerator("id")),
		app.WithBagDedup(scenario.Setup.BagDedup),
		app.WithClock(clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build app: %w", err)
	}
	defer a.Close()

	h := &Harness{backend: backend, app: a, mirror: mirror}
	h.shell = shell.New(a, &h.out, shell.WithPrompt(""))

	result := NewResult()
	h.record(ctx, result, 0, "start", a.Start(ctx))

	for i, step := range scenario.Steps {
		if step.RotateSecret != "" {
			backend.RotateSecret(step.RotateSecret)
		}
		if step.CatalogFailures > 0 {
			backend.FailCatalog(step.CatalogFailures)
		}

		before := h.out.Len()
		err := h.shell.Exec(ctx, step.Run)
		if errors.Is(err, shell.ErrQuit) {
			break
		}
		checkStep(result, i, step, err, h.out.String()[before:])
		h.record(ctx, result, i+1, step.Run, err)
	}
	result.Output = h.out.String()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func checkStep(result *Result, i int, step Step, err error, output string) {
	switch {
	case step.ExpectError != "" && err == nil:
		result.AddError(fmt.Sprintf("steps[%d] %q: expected error containing %q, got success", i, step.Run, step.ExpectError))
	case step.ExpectError != "" && !strings.Contains(shell.Describe(err), step.ExpectError):
		result.AddError(fmt.Sprintf("steps[%d] %q: expected error containing %q, got %q", i, step.Run, step.ExpectError, shell.Describe(err)))
	case step.ExpectError == "" && err != nil:
		result.AddError(fmt.Sprintf("steps[%d] %q: %s", i, step.Run, shell.Describe(err)))
	}

	if step.ExpectOutput != "" && !strings.Contains(output, step.ExpectOutput) {
		result.AddError(fmt.Sprintf("steps[%d] %q: output %q does not contain %q", i, step.Run, output, step.ExpectOutput))
	}
}

func (h *Harness) record(ctx context.Context, result *Result, seq int, command string, err error) {
	ev := TraceEvent{Seq: seq, Command: command, State: h.snapshot(ctx)}
	if err != nil {
		ev.Error = shell.Describe(err)
	}
	result.Trace = append(result.Trace, ev)
}

func (h *Harness) snapshot(ctx context.Context) Snapshot {
	st := h.app.Store.GetState()
	search := h.app.Query.Search()
	loc := h.app.Location()
	token, _, err := h.mirror.LoadSession(ctx)

	snap := Snapshot{
		Catalog:       catalogIDs(st),
		Fetching:      st.FetchStatus.CurrentlyFetching,
		FetchDone:     st.FetchStatus.FetchDone,
		Bag:           ids(st.Bag),
		Wishlist:      ids(st.Wishlist),
		Authenticated: st.Session.IsAuthenticated,
		Persisted:     err == nil && token != "",
		View:          loc.View,
		Path:          loc.Path,
		SearchText:    search.Text,
		Category:      search.ActiveCategory,
	}
	if st.Session.User != nil {
		snap.User = st.Session.User.Email
	}
	if search.ShowSuggestions {
		snap.Suggestions = search.Suggestions
	}
	return snap
}
