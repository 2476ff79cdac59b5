package osc

import (
	"reflect"
	"sort"
	"testing"

	"github.com/pkg/errors"
)

func nodeNames(nodes []*AddressNode) []string {
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name())
	}
	sort.Strings(names)
	return names
}

func TestAddressNode_AddMethod(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		method  Method
		wantErr error
	}{
		{"valid", "/address/test", &recorder{}, nil},
		{"wildcard", "/address*/test", &recorder{}, nil},
		{"root", "/", &recorder{}, nil},
		{"space", "/address/te st", &recorder{}, ErrInvalidPattern},
		{"comma", "/a,b", &recorder{}, ErrInvalidPattern},
		{"hash", "/#a", &recorder{}, ErrInvalidPattern},
		{"unterminated_class", "/foo[", &recorder{}, ErrInvalidPattern},
		{"unbalanced_brace", "/a}/b", &recorder{}, ErrInvalidPattern},
		{"empty_class", "/a/[]", &recorder{}, ErrInvalidPattern},
		{"func", "/address", MethodFunc(func(*Message, Origin) {}), ErrUncomparableMethod},
		{"nil", "/address", nil, ErrUncomparableMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewAddressNode("")
			err := root.AddMethod(tt.pattern, tt.method)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("AddMethod() error = %v, want %v", err, tt.wantErr)
			}
			if err != nil && len(root.Children()) != 0 {
				t.Errorf("failed AddMethod() left children %v", root.Children())
			}
		})
	}
}

func TestAddressNode_Pruning(t *testing.T) {
	root := NewAddressNode("")
	h := &recorder{}
	if err := root.AddMethod("/a/b", h); err != nil {
		t.Fatal(err)
	}
	if root.Child("a") == nil || root.Child("a").Child("b") == nil {
		t.Fatal("AddMethod() didn't create /a/b")
	}

	if err := root.RemoveMethod("/a/b", h); err != nil {
		t.Fatal(err)
	}
	if root.Child("a") != nil {
		t.Errorf("node a wasn't pruned; children = %v", root.Children())
	}

	if err := root.RemoveMethod("/a/b", h); !errors.Is(err, ErrNotFound) {
		t.Errorf("second RemoveMethod() error = %v, want ErrNotFound", err)
	}
}

func TestAddressNode_PruningKeepsSiblings(t *testing.T) {
	root := NewAddressNode("")
	h1, h2 := &recorder{}, &recorder{}
	root.AddMethod("/a/b", h1)
	root.AddMethod("/a/c", h2)
	root.AddMethod("/a/b", h2)

	if err := root.RemoveMethod("/a/b", h1); err != nil {
		t.Fatal(err)
	}
	if root.Child("a").Child("b") == nil {
		t.Error("/a/b pruned while it still has a method")
	}
	if err := root.RemoveMethod("/a/b", h1); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveMethod() error = %v, want ErrNotFound", err)
	}
	if err := root.RemoveMethod("/a/b", h2); err != nil {
		t.Fatal(err)
	}
	if got := root.Child("a").Children(); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("children of /a = %v, want [c]", got)
	}
}

func TestAddressNode_Match(t *testing.T) {
	root := NewAddressNode("")
	for _, addr := range []string{
		"/synth/1/freq",
		"/synth/2/freq",
		"/synth/2/amp",
		"/drum/1/freq",
	} {
		if err := root.AddMethod(addr, &recorder{}); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		pattern string
		want    int
	}{
		{"/synth/1/freq", 1},
		{"/synth/*/freq", 2},
		{"/*/1/freq", 2},
		{"/synth/2/*", 2},
		{"/{synth,drum}/[12]/freq", 3},
		{"/synth/3/freq", 0},
		{"/synth/1", 1},
		{"/synth/1/freq/extra", 0},
	}
	for _, tt := range tests {
		nodes, err := root.Match(tt.pattern)
		if err != nil {
			t.Errorf("Match(%q) error = %v", tt.pattern, err)
			continue
		}
		if len(nodes) != tt.want {
			t.Errorf("Match(%q) = %v, want %d nodes", tt.pattern, nodeNames(nodes), tt.want)
		}
	}

	if _, err := root.Match("/synth/[1"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Match() error = %v, want ErrInvalidPattern", err)
	}
}

func TestAddressNode_WildcardRegistration(t *testing.T) {
	root := NewAddressNode("")
	star, digit, exact := &recorder{}, &recorder{}, &recorder{}
	root.AddMethod("/synth/*", star)
	root.AddMethod("/synth/[0-9]", digit)

	methods, err := root.Methods("/synth/7")
	if err != nil {
		t.Fatal(err)
	}
	// Only the first matching wildcard child, in sorted order, is used
	if len(methods) != 1 || methods[0] != star {
		t.Errorf("Methods(/synth/7) = %v, want [star]", methods)
	}

	root.AddMethod("/synth/7", exact)
	methods, _ = root.Methods("/synth/7")
	if len(methods) != 2 {
		t.Errorf("Methods(/synth/7) = %v, want star and exact", methods)
	}

	root.RemoveMethod("/synth/*", star)
	methods, _ = root.Methods("/synth/7")
	if len(methods) != 2 || !containsMethod(methods, digit) || !containsMethod(methods, exact) {
		t.Errorf("Methods(/synth/7) = %v, want digit and exact", methods)
	}
}

func containsMethod(methods []Method, m Method) bool {
	for _, o := range methods {
		if o == m {
			return true
		}
	}
	return false
}

func TestAddressNode_Nesting(t *testing.T) {
	root := NewAddressNode("")
	parent, child := &recorder{}, &recorder{}
	root.AddMethod("/foo", parent)
	root.AddMethod("/foo/bar", child)

	methods, _ := root.MatchMethods(NewMessage("/foo"))
	if len(methods) != 1 || methods[0] != parent {
		t.Errorf("MatchMethods(/foo) = %v", methods)
	}
	methods, _ = root.MatchMethods(NewMessage("/foo/bar"))
	if len(methods) != 1 || methods[0] != child {
		t.Errorf("MatchMethods(/foo/bar) = %v", methods)
	}

	// Removing the parent's method keeps the node alive for its child
	root.RemoveMethod("/foo", parent)
	if root.Child("foo") == nil {
		t.Fatal("/foo pruned while it has a child")
	}
	root.RemoveMethod("/foo/bar", child)
	if root.Child("foo") != nil {
		t.Error("/foo not pruned")
	}
}

func TestAddressNode_SetName(t *testing.T) {
	root := NewAddressNode("")
	h := &recorder{}
	root.AddMethod("/a/b", h)
	node := root.Child("a")

	if err := node.SetName("z"); err != nil {
		t.Fatal(err)
	}
	if root.Child("a") != nil || root.Child("z") != node {
		t.Errorf("children after rename = %v", root.Children())
	}
	if methods, _ := root.Methods("/z/b"); len(methods) != 1 {
		t.Errorf("Methods(/z/b) = %v", methods)
	}

	if err := node.SetName("bad name"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("SetName() error = %v, want ErrInvalidPattern", err)
	}
	if err := node.SetName("{z"); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("SetName({z) error = %v, want ErrInvalidPattern", err)
	}
	if node.Name() != "z" {
		t.Errorf("Name() = %q after failed rename", node.Name())
	}

	// Renaming to a wildcard makes the node match literal addresses
	if err := node.SetName("*"); err != nil {
		t.Fatal(err)
	}
	if methods, _ := root.Methods("/anything/b"); len(methods) != 1 {
		t.Errorf("Methods(/anything/b) = %v", methods)
	}
}

func TestAddressNode_SetParent(t *testing.T) {
	root, other := NewAddressNode(""), NewAddressNode("")
	h := &recorder{}
	root.AddMethod("/a/b/c", h)
	node := root.Child("a").Child("b")

	node.SetParent(other)
	if node.Parent() != other || other.Child("b") != node {
		t.Fatal("SetParent() didn't attach the node")
	}
	if len(root.Children()) != 0 {
		t.Errorf("old parents not pruned; root children = %v", root.Children())
	}
	if methods, _ := other.Methods("/b/c"); len(methods) != 1 {
		t.Errorf("Methods(/b/c) = %v", methods)
	}

	node.SetParent(nil)
	if node.Parent() != nil || other.Child("b") != nil {
		t.Error("SetParent(nil) didn't detach the node")
	}
}

func TestAddressNode_AddNode(t *testing.T) {
	root := NewAddressNode("")
	mixer := NewAddressNode("")
	gain := &recorder{}
	mixer.AddMethod("/gain", gain)

	if err := root.AddNode("mixer", mixer); err != nil {
		t.Fatal(err)
	}
	if methods, _ := root.Methods("/mixer/gain"); len(methods) != 1 || methods[0] != gain {
		t.Errorf("Methods(/mixer/gain) = %v", methods)
	}

	// A node with the same name replaces the previous one
	other := NewAddressNode("")
	other.AddMethod("/pan", &recorder{})
	root.AddNode("mixer", other)
	if root.Child("mixer") != other || mixer.Parent() != nil {
		t.Error("AddNode() didn't replace the previous node")
	}

	if err := root.AddNode("a/b", NewAddressNode("")); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("AddNode() error = %v, want ErrInvalidPattern", err)
	}
}

func TestAddressNode_RemoveMethods(t *testing.T) {
	root := NewAddressNode("")
	root.AddMethod("/a/b", &recorder{})
	root.AddMethod("/a/b", &recorder{})
	root.AddMethod("/c", &recorder{})

	root.Child("a").Child("b").RemoveMethods()
	if root.Child("a") != nil {
		t.Errorf("RemoveMethods() didn't prune; children = %v", root.Children())
	}

	root.RemoveAllMethods()
	if len(root.Children()) != 0 {
		t.Errorf("RemoveAllMethods() left %v", root.Children())
	}
	if methods, _ := root.Methods("/*"); len(methods) != 0 {
		t.Errorf("Methods() after RemoveAllMethods() = %v", methods)
	}
}

func TestNewMethod(t *testing.T) {
	var calls int
	f := func(*Message, Origin) { calls++ }
	m1, m2 := NewMethod(f), NewMethod(f)
	if m1 == m2 {
		t.Error("NewMethod() returned the same Method twice")
	}

	root := NewAddressNode("")
	root.AddMethod("/x", m1)
	root.AddMethod("/x", m2)
	methods, _ := root.Methods("/x")
	for _, m := range methods {
		m.HandleMessage(NewMessage("/x"), nil)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
