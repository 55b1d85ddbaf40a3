// Package shell composes the application frame: on every navigation request it
// consults the access policy and the navigation model, then hands the
// resulting frame to a renderer. It owns no rendering technology of its own.
package shell

import (
	"fmt"
	"sync"

	"synaphack/platform/internal/access"
	"synaphack/platform/internal/auth"
	"synaphack/platform/internal/nav"
	"synaphack/platform/internal/notify"
	"synaphack/platform/internal/session"
)

type State int

const (
	StateBooting State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateBooting:
		return "booting"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Frame is everything a renderer needs to paint one view: the shell state, the
// mounted path, the role chrome, and the live notification set. Nav is nil
// whenever the chrome must be hidden.
type Frame struct {
	State   State
	Path    string
	Role    auth.Role
	Nav     []nav.Entry
	Notices []notify.Entry
}

type Renderer interface {
	Render(Frame)
}

type RendererFunc func(Frame)

func (f RendererFunc) Render(frame Frame) { f(frame) }

// Composer is the top-level shell. It re-evaluates the access policy on every
// navigation request and whenever the session store transitions, so a logout
// never leaves stale protected chrome on screen.
type Composer struct {
	store    *session.Store
	bus      *notify.Bus
	renderer Renderer
	routes   []Route

	// decideFunc is swappable so tests can observe that public routes never
	// reach the policy.
	decideFunc func(session.Snapshot, string, auth.Role) access.Decision

	mu      sync.Mutex
	path    string
	notices []notify.Entry
	frame   Frame
	started bool

	unsubSession func()
	unsubBus     func()
}

func NewComposer(store *session.Store, bus *notify.Bus, renderer Renderer) (*Composer, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	return &Composer{
		store:      store,
		bus:        bus,
		renderer:   renderer,
		routes:     DefaultRoutes(),
		decideFunc: access.Decide,
		path:       "/",
	}, nil
}

// Start subscribes to the session store and the notification bus, then mounts
// the current path. Call Stop when the shell unmounts.
func (c *Composer) Start() {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	path := c.path
	c.mu.Unlock()

	c.unsubSession = c.store.Subscribe(func(session.Snapshot) {
		// Re-evaluate the current path against the new session state before
		// anything else observes the old frame.
		c.mu.Lock()
		current := c.path
		c.mu.Unlock()
		c.Navigate(current)
	})

	if c.bus != nil {
		c.unsubBus = c.bus.Subscribe(func(entries []notify.Entry) {
			c.mu.Lock()
			c.notices = entries
			mounted := c.started && c.frame.Path != ""
			frame := c.frame
			c.mu.Unlock()
			if mounted {
				c.render(frame)
			}
		})
	}

	c.Navigate(path)
}

func (c *Composer) Stop() {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	if c.unsubSession != nil {
		c.unsubSession()
		c.unsubSession = nil
	}
	if c.unsubBus != nil {
		c.unsubBus()
		c.unsubBus = nil
	}
}

// Navigate handles one navigation request. Public routes mount without
// consulting the policy; protected routes are decided fresh every time, and a
// redirect is followed instead of mounting (no flash of protected content).
func (c *Composer) Navigate(path string) {
	route, ok := matchRoute(c.routes, path)
	if !ok {
		// Unknown destinations fall back to the landing page.
		c.Navigate("/")
		return
	}

	c.mu.Lock()
	c.path = path
	c.mu.Unlock()

	snap := c.store.Current()

	if route.Public {
		c.mount(snap, path)
		return
	}

	decision := c.decideFunc(snap, path, route.Required)
	switch decision.Kind {
	case access.Pending:
		c.mountLoading(path)
	case access.Redirect:
		c.Navigate(decision.Target)
	case access.Allowed:
		if route.RoleHome {
			c.Navigate(access.DashboardPath(snap.Identity.Role))
			return
		}
		c.mount(snap, path)
	}
}

// Frame returns the most recently rendered frame.
func (c *Composer) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *Composer) mount(snap session.Snapshot, path string) {
	frame := Frame{Path: path}
	switch {
	case snap.Loading:
		frame.State = StateBooting
	case snap.Identity == nil:
		frame.State = StateUnauthenticated
	default:
		frame.State = StateAuthenticated
		frame.Role = snap.Identity.Role
		frame.Nav = nav.LinksFor(snap.Identity.Role)
	}
	c.render(frame)
}

func (c *Composer) mountLoading(path string) {
	c.render(Frame{State: StateBooting, Path: path})
}

func (c *Composer) render(frame Frame) {
	c.mu.Lock()
	frame.Notices = c.notices
	c.frame = frame
	c.mu.Unlock()

	c.renderer.Render(frame)
}
