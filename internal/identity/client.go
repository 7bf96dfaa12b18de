package identity

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"taskboard/internal/model"
)

// Listener receives the current identity, or nil when signed out.
type Listener func(*model.Identity)

type subscription struct {
	id int
	fn Listener
}

type notification struct {
	identity *model.Identity
	target   int // subscription ID, or zero for every subscription
}

// Client is one viewer's handle on the identity provider. It tracks the
// signed-in identity and reports every auth-state transition to its
// listeners. Notifications are delivered by a single goroutine, one at a
// time, in the order they were emitted.
type Client struct {
	provider Provider

	mu        sync.Mutex
	current   *model.Identity
	subs      []subscription
	nextSubID int
	queue     []notification
	closed    bool

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(provider Provider) *Client {
	c := &Client{
		provider: provider,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// OnAuthStateChanged registers fn. It is first called with the current state
// and then on every transition until the returned function is called.
func (c *Client) OnAuthStateChanged(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSubID++
	id := c.nextSubID
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.enqueueLocked(notification{identity: c.current, target: id})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	id, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setCurrent(id)
	return clone(id), nil
}

// SignUp creates the account and signs it in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*model.Identity, error) {
	id, err := c.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	c.setCurrent(id)
	return clone(id), nil
}

// UpdateProfile sets the display name of the signed-in identity.
func (c *Client) UpdateProfile(ctx context.Context, displayName string) (*model.Identity, error) {
	cur := c.CurrentUser()
	if cur == nil {
		return nil, ErrNoCurrentUser
	}

	id, err := c.provider.UpdateProfile(ctx, cur, displayName)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// a sign-out or another sign-in may have raced the provider call
	if c.current == nil || c.current.UID != id.UID {
		return clone(id), nil
	}
	c.current = clone(id)
	c.enqueueLocked(notification{identity: c.current})
	return clone(id), nil
}

func (c *Client) SignOut(ctx context.Context) error {
	if cur := c.CurrentUser(); cur != nil {
		if err := c.provider.SignOut(ctx, cur); err != nil {
			return err
		}
	}
	c.setCurrent(nil)
	return nil
}

func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	return c.provider.SendPasswordReset(ctx, email)
}

// CurrentUser returns a copy of the signed-in identity, or nil.
func (c *Client) CurrentUser() *model.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.current)
}

// Close stops notification delivery. Pending notifications are dropped.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.queue = nil
		c.subs = nil
		c.mu.Unlock()
		close(c.done)
	})
}

func (c *Client) setCurrent(id *model.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = clone(id)
	c.enqueueLocked(notification{identity: c.current})
}

func (c *Client) unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return
		}
	}
}

func (c *Client) enqueueLocked(n notification) {
	if c.closed {
		return
	}
	n.identity = clone(n.identity)
	c.queue = append(c.queue, n)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Client) dispatch() {
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}

		for {
			n, listeners, ok := c.next()
			if !ok {
				break
			}
			for _, fn := range listeners {
				fn(clone(n.identity))
			}
		}
	}
}

// next pops the oldest notification along with the listeners it goes to.
func (c *Client) next() (notification, []Listener, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || len(c.queue) == 0 {
		return notification{}, nil, false
	}
	n := c.queue[0]
	c.queue = c.queue[1:]

	var listeners []Listener
	for _, s := range c.subs {
		if n.target == 0 || n.target == s.id {
			listeners = append(listeners, s.fn)
		}
	}
	if glog.V(2) {
		glog.Infof("identity: delivering %s to %d listener(s)", describe(n.identity), len(listeners))
	}
	return n, listeners, true
}

func clone(id *model.Identity) *model.Identity {
	if id == nil {
		return nil
	}
	cp := *id
	return &cp
}

func describe(id *model.Identity) string {
	if id == nil {
		return "signed-out state"
	}
	return id.Email
}
