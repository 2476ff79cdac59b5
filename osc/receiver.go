package osc

import (
	stderrors "errors"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/tliron/commonlog"
)

// log returns the package logger. It is looked up on every call so that a
// backend configured after init is still used.
func log() commonlog.Logger {
	return commonlog.GetLogger("osc")
}

// Origin describes where a packet came from. Send replies to the sender over
// the same transport. A nil Origin is used for packets dispatched locally.
type Origin interface {
	RemoteAddr() net.Addr
	Send(p Packet) error
}

// Dispatcher is implemented by anything that can route received packets.
type Dispatcher interface {
	Dispatch(p Packet, origin Origin) error
}

// DispatcherFunc implements the Dispatcher interface.
type DispatcherFunc func(p Packet, origin Origin) error

// Dispatch calls f(p, origin).
func (f DispatcherFunc) Dispatch(p Packet, origin Origin) error {
	return f(p, origin)
}

// Receiver dispatches received messages to the Methods registered in its
// address tree. Messages that match no method go to Fallback.
//
// Registration and dispatch may be called concurrently. Methods are called
// without the Receiver's lock held, so they may add and remove methods.
type Receiver struct {
	// Fallback handles messages that matched no method. If nil, the
	// message is logged.
	Fallback Method

	mu   sync.RWMutex
	root *AddressNode
}

var _ Dispatcher = (*Receiver)(nil)

// NewReceiver returns a Receiver with an empty address tree.
func NewReceiver() *Receiver {
	return &Receiver{root: NewAddressNode("")}
}

func (r *Receiver) tree() *AddressNode {
	if r.root == nil {
		r.root = NewAddressNode("")
	}
	return r.root
}

// AddMethod adds a new OSC Method for the given OSC Address pattern.
func (r *Receiver) AddMethod(pattern string, m Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree().AddMethod(pattern, m)
}

// AddMethodFunc allows you to just pass a MethodFunc. The returned Method is
// needed to remove it.
func (r *Receiver) AddMethodFunc(pattern string, f MethodFunc) (Method, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree().AddMethodFunc(pattern, f)
}

// RemoveMethod removes m from pattern.
func (r *Receiver) RemoveMethod(pattern string, m Method) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree().RemoveMethod(pattern, m)
}

// RemoveAllMethods empties the address tree.
func (r *Receiver) RemoveAllMethods() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tree().RemoveAllMethods()
}

// AddNode mounts child under name at the root of the tree.
func (r *Receiver) AddNode(name string, child *AddressNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tree().AddNode(name, child)
}

// Methods returns the methods matched by pattern.
func (r *Receiver) Methods(pattern string) ([]Method, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.root == nil {
		return nil, nil
	}
	return r.root.Methods(pattern)
}

// Match returns the nodes matched by pattern.
func (r *Receiver) Match(pattern string) ([]*AddressNode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.root == nil {
		return nil, nil
	}
	return r.root.Match(pattern)
}

// Dispatch calls every method matching the address of each message in p.
// Bundles are flattened first. The order in which methods are called is
// undefined. Panics in methods are not recovered.
//
// A message with an invalid address pattern doesn't stop the rest of a
// bundle; the errors of all such messages are joined and returned.
func (r *Receiver) Dispatch(p Packet, origin Origin) error {
	var msgs []*Message
	switch p := p.(type) {
	case *Message:
		msgs = []*Message{p}
	case *Bundle:
		msgs = p.Messages()
	default:
		return errors.Wrapf(ErrUnsupportedType, "dispatch: invalid packet %T", p)
	}

	var errs []error
	for _, m := range msgs {
		methods, err := r.Methods(m.Address)
		if err != nil {
			errs = append(errs, errors.WithMessagef(err, "dispatch %s", m.Address))
			continue
		}
		if len(methods) == 0 {
			r.fallback(m, origin)
			continue
		}
		for _, method := range methods {
			method.HandleMessage(m, origin)
		}
	}
	return stderrors.Join(errs...)
}

func (r *Receiver) fallback(m *Message, origin Origin) {
	if r.Fallback != nil {
		r.Fallback.HandleMessage(m, origin)
		return
	}
	log().Infof("unhandled message from %s: %s", originString(origin), m)
}

func originString(origin Origin) string {
	if origin == nil || origin.RemoteAddr() == nil {
		return "local"
	}
	return origin.RemoteAddr().String()
}
