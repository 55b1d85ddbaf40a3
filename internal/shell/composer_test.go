package shell

import (
	"testing"

	"synaphack/platform/internal/access"
	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/notify"
	"synaphack/platform/internal/session"
)

type stubAuthenticator struct {
	ident session.Identity
	found bool
}

func (s stubAuthenticator) Login(email, password string) (session.Identity, error) {
	return s.ident, nil
}

func (s stubAuthenticator) Register(profile session.Profile) (session.Identity, error) {
	return s.ident, nil
}

func (s stubAuthenticator) Restore() (session.Identity, bool, error) {
	return s.ident, s.found, nil
}

type recordingRenderer struct {
	frames []Frame
}

func (r *recordingRenderer) Render(f Frame) {
	r.frames = append(r.frames, f)
}

func (r *recordingRenderer) last(t *testing.T) Frame {
	t.Helper()
	if len(r.frames) == 0 {
		t.Fatalf("no frames rendered")
	}
	return r.frames[len(r.frames)-1]
}

func participant() session.Identity {
	return session.Identity{ID: "u-1", Name: "Ada", Email: "ada@synaphack.dev", Role: auth.RoleParticipant}
}

func newComposer(t *testing.T, authn session.Authenticator, bus *notify.Bus) (*Composer, *session.Store, *recordingRenderer) {
	t.Helper()
	store := session.NewStore(authn, bus)
	renderer := &recordingRenderer{}
	c, err := NewComposer(store, bus, renderer)
	if err != nil {
		t.Fatalf("NewComposer() error: %v", err)
	}
	return c, store, renderer
}

func TestStartRendersBootingFrame(t *testing.T) {
	c, _, renderer := newComposer(t, stubAuthenticator{}, nil)

	c.Start()
	defer c.Stop()

	frame := renderer.last(t)
	if frame.State != StateBooting {
		t.Fatalf("expected booting state before restore, got %v", frame.State)
	}
	if frame.Path != "/" {
		t.Fatalf("expected landing path, got %q", frame.Path)
	}
}

func TestRestoreWithoutCredentialShowsUnauthenticated(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	frame := renderer.last(t)
	if frame.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated state, got %v", frame.State)
	}
	if frame.Nav != nil {
		t.Fatalf("expected no nav chrome while logged out, got %v", frame.Nav)
	}
}

func TestPublicRoutesBypassThePolicy(t *testing.T) {
	store := session.NewStore(stubAuthenticator{}, nil)
	c, err := NewComposer(store, nil, RendererFunc(func(Frame) {}))
	if err != nil {
		t.Fatalf("NewComposer() error: %v", err)
	}

	decisions := 0
	c.decideFunc = func(snap session.Snapshot, path string, required auth.Role) access.Decision {
		decisions++
		return access.Decide(snap, path, required)
	}

	c.Start()
	defer c.Stop()
	store.Restore()

	c.Navigate("/events")
	c.Navigate("/about")
	c.Navigate("/leaderboard")

	if decisions != 0 {
		t.Fatalf("public routes must not consult the policy, got %d decisions", decisions)
	}
}

func TestProtectedRouteWhileLoggedOutRedirectsWithoutFlash(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	c.Navigate("/dashboard/organizer")

	for _, f := range renderer.frames {
		if f.Path == "/dashboard/organizer" {
			t.Fatalf("protected content must never mount while logged out")
		}
	}
	frame := renderer.last(t)
	if frame.Path != access.LoginPath {
		t.Fatalf("expected redirect to login, got %q", frame.Path)
	}
}

func TestProtectedRouteWhileLoadingShowsLoadingFrame(t *testing.T) {
	c, _, renderer := newComposer(t, stubAuthenticator{}, nil)

	c.Start()
	defer c.Stop()

	c.Navigate("/dashboard/participant")

	frame := renderer.last(t)
	if frame.State != StateBooting || frame.Path != "/dashboard/participant" {
		t.Fatalf("expected loading frame for the requested path, got %+v", frame)
	}
}

func TestRoleHomeForwardsToOwnDashboard(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{ident: participant(), found: true}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	c.Navigate("/dashboard")

	frame := renderer.last(t)
	if frame.Path != "/dashboard/participant" {
		t.Fatalf("expected forward to participant dashboard, got %q", frame.Path)
	}
	if frame.State != StateAuthenticated || frame.Role != auth.RoleParticipant {
		t.Fatalf("unexpected frame: %+v", frame)
	}
	if len(frame.Nav) == 0 {
		t.Fatalf("expected nav chrome for authenticated frame")
	}
}

func TestRoleMismatchLandsOnOwnDashboard(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{ident: participant(), found: true}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	c.Navigate("/dashboard/judge/reviews")

	frame := renderer.last(t)
	if frame.Path != "/dashboard/participant" {
		t.Fatalf("expected own dashboard after role mismatch, got %q", frame.Path)
	}
}

func TestUnknownPathFallsBackToLanding(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	c.Navigate("/no/such/page")

	frame := renderer.last(t)
	if frame.Path != "/" {
		t.Fatalf("expected fallback to landing page, got %q", frame.Path)
	}
}

func TestLoginLogoutTransitionsReframe(t *testing.T) {
	c, store, renderer := newComposer(t, stubAuthenticator{ident: participant()}, nil)

	c.Start()
	defer c.Stop()
	store.Restore()

	if err := store.Login("ada@synaphack.dev", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	frame := renderer.last(t)
	if frame.State != StateAuthenticated {
		t.Fatalf("expected authenticated frame after login, got %+v", frame)
	}

	c.Navigate("/dashboard/participant/teams")
	if renderer.last(t).Path != "/dashboard/participant/teams" {
		t.Fatalf("expected teams page mounted, got %q", renderer.last(t).Path)
	}

	store.Logout()

	frame = renderer.last(t)
	if frame.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated frame after logout, got %+v", frame)
	}
	if frame.Path != access.LoginPath {
		t.Fatalf("expected protected page vacated for login, got %q", frame.Path)
	}
	if frame.Nav != nil {
		t.Fatalf("expected nav chrome dropped after logout")
	}
}

func TestNotificationsFlowIntoFrames(t *testing.T) {
	bus := notify.NewBus()
	c, store, renderer := newComposer(t, stubAuthenticator{}, bus)

	c.Start()
	defer c.Stop()
	store.Restore()

	bus.Publish("Heads up", "submissions close soon", notify.KindWarning)

	frame := renderer.last(t)
	if len(frame.Notices) != 1 {
		t.Fatalf("expected one notice in frame, got %d", len(frame.Notices))
	}
	if frame.Notices[0].Title != "Heads up" {
		t.Fatalf("unexpected notice: %+v", frame.Notices[0])
	}
}

func TestStopDetachesSubscriptions(t *testing.T) {
	bus := notify.NewBus()
	c, store, renderer := newComposer(t, stubAuthenticator{}, bus)

	c.Start()
	store.Restore()
	c.Stop()

	rendered := len(renderer.frames)
	bus.Publish("late", "", notify.KindInfo)
	store.Logout()

	if len(renderer.frames) != rendered {
		t.Fatalf("expected no renders after stop, got %d extra", len(renderer.frames)-rendered)
	}
}

func TestMatchRoutePrefersExactThenPrefix(t *testing.T) {
	routes := DefaultRoutes()

	r, ok := matchRoute(routes, "/dashboard/judge")
	if !ok || r.Required != auth.RoleJudge || r.Prefix != true {
		t.Fatalf("unexpected exact match: %+v %v", r, ok)
	}

	r, ok = matchRoute(routes, "/dashboard/judge/reviews")
	if !ok || r.Required != auth.RoleJudge {
		t.Fatalf("unexpected prefix match: %+v %v", r, ok)
	}

	if _, ok := matchRoute(routes, "/nonexistent"); ok {
		t.Fatalf("expected no match for unknown path")
	}
}
