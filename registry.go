package dispatch

import (
	"fmt"
	"reflect"
	"sync"
)

// Category identifies the kind of capability looked up in a Resolver.
type Category int

const (
	// CategoryCommandHandler holds exactly one Handler per command key.
	CategoryCommandHandler Category = iota + 1
	// CategoryQueryHandler holds exactly one Handler per query key.
	CategoryQueryHandler
	// CategoryBehavior holds pipeline behaviors in registration order.
	CategoryBehavior
	// CategoryNotificationHandler holds notification handlers in registration order.
	CategoryNotificationHandler
	// CategoryExceptionAction holds fault observers.
	CategoryExceptionAction
	// CategoryExceptionHandler holds fault recoverers.
	CategoryExceptionHandler
)

func (c Category) String() string {
	switch c {
	case CategoryCommandHandler:
		return "command handler"
	case CategoryQueryHandler:
		return "query handler"
	case CategoryBehavior:
		return "behavior"
	case CategoryNotificationHandler:
		return "notification handler"
	case CategoryExceptionAction:
		return "exception action"
	case CategoryExceptionHandler:
		return "exception handler"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Key identifies a request by its request and result types. Within an Entry
// a nil type matches any type, which is how open capabilities are registered.
type Key struct {
	Request reflect.Type
	Result  reflect.Type
}

// KeyOf returns the key for requests of type Req producing Res.
func KeyOf[Req, Res any]() Key {
	return Key{Request: reflect.TypeFor[Req](), Result: reflect.TypeFor[Res]()}
}

func (k Key) String() string {
	return typeString(k.Request) + " -> " + typeString(k.Result)
}

// matches reports whether an entry registered under k applies to lookup.
func (k Key) matches(lookup Key) bool {
	if k.Request != nil && k.Request != lookup.Request {
		return false
	}
	if k.Result != nil && k.Result != lookup.Result {
		return false
	}
	return true
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// Entry is a registered capability as returned by a Resolver.
type Entry struct {
	// Key the capability was registered under. Nil types match any type.
	Key Key
	// Origin is used to compute the priority of exception actions and handlers.
	Origin Origin
	// Instance is the capability itself, for example a Handler[Req, Res] or
	// a Behavior[any, any] for open behaviors.
	Instance any
	// Match optionally restricts exception actions and handlers to the faults
	// it accepts. Nil accepts every fault.
	Match func(error) bool
}

// Resolver looks up registered capabilities. Entries must be returned in
// registration order.
type Resolver interface {
	Resolve(key Key, cat Category) []Entry
}

// Option configures an Entry at registration.
type Option func(*Entry)

// WithOrigin attaches an origin to a registration. Without it the zero
// Origin is used, whose empty Path matches every request path in
// PriorityScore.
func WithOrigin(o Origin) Option {
	return func(e *Entry) {
		e.Origin = o
	}
}

// WithErrorMatch restricts an exception action or handler to faults accepted
// by match. Without it every fault is accepted.
func WithErrorMatch(match func(error) bool) Option {
	return func(e *Entry) {
		e.Match = match
	}
}

// Registry is an in-memory Resolver populated through explicit registration,
// typically at process startup.
type Registry struct {
	mu      sync.RWMutex
	entries map[Category][]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Category][]Entry),
	}
}

// Resolve returns the entries of the given category matching key, in
// registration order.
func (r *Registry) Resolve(key Key, cat Category) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Entry
	for _, e := range r.entries[cat] {
		if e.Key.matches(key) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Add registers an entry under cat. Most callers use the typed Register
// functions instead.
func (r *Registry) Add(cat Category, e Entry) error {
	if e.Instance == nil {
		return fmt.Errorf("%w: nil %s for %s", ErrInvalidRegistration, cat, e.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cat == CategoryCommandHandler || cat == CategoryQueryHandler {
		for _, existing := range r.entries[cat] {
			if existing.Key == e.Key {
				return fmt.Errorf("%w: %s for %s", ErrHandlerExists, cat, e.Key)
			}
		}
	}
	r.entries[cat] = append(r.entries[cat], e)
	return nil
}

func (r *Registry) add(cat Category, key Key, instance any, opts []Option) error {
	e := Entry{Key: key, Instance: instance}
	for _, opt := range opts {
		opt(&e)
	}
	return r.Add(cat, e)
}

// RegisterCommandHandler registers the handler for commands of type Req.
func RegisterCommandHandler[Req, Res any](r *Registry, h Handler[Req, Res], opts ...Option) error {
	return r.add(CategoryCommandHandler, KeyOf[Req, Res](), h, opts)
}

// RegisterQueryHandler registers the handler for queries of type Req.
func RegisterQueryHandler[Req, Res any](r *Registry, h Handler[Req, Res], opts ...Option) error {
	return r.add(CategoryQueryHandler, KeyOf[Req, Res](), h, opts)
}

// RegisterBehavior registers a pipeline behavior for requests of type Req
// producing Res.
func RegisterBehavior[Req, Res any](r *Registry, b Behavior[Req, Res], opts ...Option) error {
	return r.add(CategoryBehavior, KeyOf[Req, Res](), b, opts)
}

// RegisterOpenBehavior registers a pipeline behavior applied to every command
// and query. It runs at its registration position among typed behaviors.
func RegisterOpenBehavior(r *Registry, b Behavior[any, any], opts ...Option) error {
	return r.add(CategoryBehavior, Key{}, b, opts)
}

// RegisterNotificationHandler registers a handler for notifications of type N.
func RegisterNotificationHandler[N any](r *Registry, h NotificationHandler[N], opts ...Option) error {
	key := Key{Request: reflect.TypeFor[N]()}
	return r.add(CategoryNotificationHandler, key, h, opts)
}

// RegisterOpenNotificationHandler registers a handler receiving every
// published notification.
func RegisterOpenNotificationHandler(r *Registry, h NotificationHandler[any], opts ...Option) error {
	return r.add(CategoryNotificationHandler, Key{}, h, opts)
}

// RegisterExceptionAction registers a fault observer for requests of type Req.
func RegisterExceptionAction[Req any](r *Registry, a ExceptionAction[Req], opts ...Option) error {
	key := Key{Request: reflect.TypeFor[Req]()}
	return r.add(CategoryExceptionAction, key, a, opts)
}

// RegisterOpenExceptionAction registers a fault observer for every request.
func RegisterOpenExceptionAction(r *Registry, a ExceptionAction[any], opts ...Option) error {
	return r.add(CategoryExceptionAction, Key{}, a, opts)
}

// RegisterExceptionHandler registers a fault recoverer for requests of type
// Req producing Res.
func RegisterExceptionHandler[Req, Res any](r *Registry, h ExceptionHandler[Req, Res], opts ...Option) error {
	return r.add(CategoryExceptionHandler, KeyOf[Req, Res](), h, opts)
}

// RegisterOpenExceptionHandler registers a fault recoverer for every request
// producing Res.
func RegisterOpenExceptionHandler[Res any](r *Registry, h ExceptionHandler[any, Res], opts ...Option) error {
	key := Key{Result: reflect.TypeFor[Res]()}
	return r.add(CategoryExceptionHandler, key, h, opts)
}

var _ Resolver = (*Registry)(nil)
