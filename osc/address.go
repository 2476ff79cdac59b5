package osc

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

// Method is an interface for OSC Methods. Methods are kept in sets, so
// implementations must be comparable; use NewMethod to wrap a function.
type Method interface {
	HandleMessage(msg *Message, origin Origin)
}

// MethodFunc implements the Method interface. Type definition for an OSC Method function.
// A MethodFunc is not comparable and can't be registered directly; wrap it
// with NewMethod.
type MethodFunc func(msg *Message, origin Origin)

// HandleMessage calls itself with the given OSC Message. Implements the Method interface.
func (f MethodFunc) HandleMessage(msg *Message, origin Origin) {
	f(msg, origin)
}

type funcMethod struct {
	f MethodFunc
}

func (m *funcMethod) HandleMessage(msg *Message, origin Origin) {
	m.f(msg, origin)
}

// NewMethod returns a Method calling f. Every call returns a distinct Method,
// which is the handle needed to remove it again.
func NewMethod(f MethodFunc) Method {
	return &funcMethod{f: f}
}

// AddressNode is a node in the tree of OSC addresses. Each node has named
// children and a set of Methods called for messages addressed to it.
//
// Nodes are created when a method is added below a part of the address that
// doesn't exist yet, and removed again once they have neither methods nor
// children. AddressNode is not safe for concurrent use; see Receiver.
type AddressNode struct {
	name   string
	parent *AddressNode

	children map[string]*AddressNode
	// wildcards holds the sorted names of children containing wildcards.
	wildcards []string
	methods   map[Method]struct{}
}

// NewAddressNode returns an empty, detached node.
func NewAddressNode(name string) *AddressNode {
	return &AddressNode{name: name}
}

// Name returns the name of this address node.
func (n *AddressNode) Name() string {
	return n.name
}

// Parent returns the parent node, or nil for a root or detached node.
func (n *AddressNode) Parent() *AddressNode {
	return n.parent
}

// Children returns the names of the child nodes, sorted.
func (n *AddressNode) Children() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the child node named name, or nil.
func (n *AddressNode) Child(name string) *AddressNode {
	return n.children[name]
}

// SetName gives this node a new name, moving it within its parent.
// A sibling that already has that name is detached.
func (n *AddressNode) SetName(name string) error {
	if err := checkAddressPart(name); err != nil {
		return err
	}
	p := n.parent
	if p != nil {
		p.unlink(n.name)
	}
	n.name = name
	if p != nil {
		p.link(n)
	}
	return nil
}

// SetParent moves this node under p. The old parent, and its ancestors, are
// pruned if they are left empty.
func (n *AddressNode) SetParent(p *AddressNode) {
	if n.parent == p {
		return
	}
	if old := n.parent; old != nil {
		old.unlink(n.name)
		old.prune()
	}
	if p != nil {
		p.link(n)
	}
}

// AddNode adds child under n with the given name.
func (n *AddressNode) AddNode(name string, child *AddressNode) error {
	if err := child.SetName(name); err != nil {
		return err
	}
	child.SetParent(n)
	return nil
}

// link attaches child to n under its current name.
func (n *AddressNode) link(child *AddressNode) {
	if n.children == nil {
		n.children = make(map[string]*AddressNode)
	}
	if prev, ok := n.children[child.name]; ok && prev != child {
		prev.parent = nil
	} else if !ok && IsWildcard(child.name) {
		i := sort.SearchStrings(n.wildcards, child.name)
		n.wildcards = append(n.wildcards, "")
		copy(n.wildcards[i+1:], n.wildcards[i:])
		n.wildcards[i] = child.name
	}
	n.children[child.name] = child
	child.parent = n
}

// unlink detaches the child called name from n.
func (n *AddressNode) unlink(name string) {
	child, ok := n.children[name]
	if !ok {
		return
	}
	delete(n.children, name)
	child.parent = nil

	if i := sort.SearchStrings(n.wildcards, name); i < len(n.wildcards) && n.wildcards[i] == name {
		n.wildcards = append(n.wildcards[:i], n.wildcards[i+1:]...)
	}
}

func (n *AddressNode) empty() bool {
	return len(n.methods) == 0 && len(n.children) == 0
}

// prune removes n from its parent if it's empty, then does the same for the
// parent. Root nodes are never removed.
func (n *AddressNode) prune() {
	for node := n; node.parent != nil; {
		p := node.parent
		if !node.empty() {
			return
		}
		p.unlink(node.name)
		node = p
	}
}

// AddMethod adds m for messages addressed to pattern, relative to n. In the
// OSC protocol only leaf nodes have methods, but here any node may.
func (n *AddressNode) AddMethod(pattern string, m Method) error {
	if m == nil || !reflect.TypeOf(m).Comparable() {
		return errors.Wrapf(ErrUncomparableMethod, "%T", m)
	}
	return n.addMethod(SplitAddress(pattern), m)
}

// AddMethodFunc wraps f with NewMethod and adds it for pattern. The returned
// Method removes it again.
func (n *AddressNode) AddMethodFunc(pattern string, f MethodFunc) (Method, error) {
	m := NewMethod(f)
	if err := n.AddMethod(pattern, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (n *AddressNode) addMethod(path []string, m Method) error {
	if len(path) == 0 {
		if n.methods == nil {
			n.methods = make(map[Method]struct{})
		}
		n.methods[m] = struct{}{}
		return nil
	}

	part := path[0]
	child, ok := n.children[part]
	if !ok {
		if err := checkAddressPart(part); err != nil {
			return err
		}
		child = NewAddressNode(part)
		if err := child.addMethod(path[1:], m); err != nil {
			return err
		}
		n.link(child)
		return nil
	}
	return child.addMethod(path[1:], m)
}

// RemoveMethod removes m from the node addressed by pattern, then prunes the
// nodes left empty.
func (n *AddressNode) RemoveMethod(pattern string, m Method) error {
	return n.removeMethod(SplitAddress(pattern), m)
}

func (n *AddressNode) removeMethod(path []string, m Method) error {
	if len(path) == 0 {
		if m == nil || !reflect.TypeOf(m).Comparable() {
			return errors.Wrapf(ErrUncomparableMethod, "%T", m)
		}
		if _, ok := n.methods[m]; !ok {
			return errors.Wrap(ErrNotFound, "no such method")
		}
		delete(n.methods, m)
		return nil
	}

	part := path[0]
	child, ok := n.children[part]
	if !ok {
		return errors.Wrapf(ErrNotFound, "no such address part %q", part)
	}
	if err := child.removeMethod(path[1:], m); err != nil {
		return err
	}
	if child.empty() {
		n.unlink(part)
	}
	return nil
}

// RemoveMethods removes the methods of this node, and prunes it if it has no
// children.
func (n *AddressNode) RemoveMethods() {
	n.methods = nil
	n.prune()
}

// RemoveAllMethods removes every method and child node below n.
func (n *AddressNode) RemoveAllMethods() {
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
	n.wildcards = nil
	n.methods = nil
	n.prune()
}

// Match returns the nodes matched by the address pattern, relative to n.
func (n *AddressNode) Match(pattern string) ([]*AddressNode, error) {
	seen := make(map[*AddressNode]struct{})
	var nodes []*AddressNode
	err := n.match(SplitAddress(pattern), func(node *AddressNode) {
		if _, ok := seen[node]; !ok {
			seen[node] = struct{}{}
			nodes = append(nodes, node)
		}
	})
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (n *AddressNode) match(path []string, found func(*AddressNode)) error {
	if len(path) == 0 {
		found(n)
		return nil
	}

	part := path[0]
	var matched []*AddressNode

	if IsWildcard(part) {
		// Wildcards in the pattern are tested against every child name
		for name, child := range n.children {
			ok, err := MatchesWildcard(name, part)
			if err != nil {
				return err
			}
			if ok {
				matched = append(matched, child)
			}
		}
	} else {
		// A literal part selects at most one child registered with a
		// wildcard name, the first in sorted order.
		for _, name := range n.wildcards {
			ok, err := MatchesWildcard(part, name)
			if err != nil {
				return err
			}
			if ok {
				matched = append(matched, n.children[name])
				break
			}
		}
	}

	if child, ok := n.children[part]; ok && !containsNode(matched, child) {
		matched = append(matched, child)
	}

	for _, child := range matched {
		if err := child.match(path[1:], found); err != nil {
			return err
		}
	}
	return nil
}

func containsNode(nodes []*AddressNode, n *AddressNode) bool {
	for _, o := range nodes {
		if o == n {
			return true
		}
	}
	return false
}

// Methods returns the methods of every node matched by pattern.
func (n *AddressNode) Methods(pattern string) ([]Method, error) {
	nodes, err := n.Match(pattern)
	if err != nil {
		return nil, err
	}

	seen := make(map[Method]struct{})
	var methods []Method
	for _, node := range nodes {
		for m := range node.methods {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				methods = append(methods, m)
			}
		}
	}
	return methods, nil
}

// MatchMethods returns the methods for the address of msg.
func (n *AddressNode) MatchMethods(msg *Message) ([]Method, error) {
	return n.Methods(msg.Address)
}
