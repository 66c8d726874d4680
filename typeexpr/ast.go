// Package typeexpr defines the type-expression AST attached to annotation
// tags ("{User[]}", "{(string|null)}") and a parser producing it.
//
// The node set is closed: every node implements the unexported marker method,
// so consumers can type-switch over the concrete types below.
package typeexpr

import "strings"

// Kind identifies a node type.
type Kind int

const (
	KindLiteral Kind = iota
	KindName
	KindArray
	KindObject
	KindEnum
	KindDate
	KindFile
	KindOptional
	KindApplication
	KindUnion
	KindAny
	KindNull
	KindField
)

var kindNames = [...]string{
	KindLiteral:     "literal",
	KindName:        "name",
	KindArray:       "array",
	KindObject:      "object",
	KindEnum:        "enum",
	KindDate:        "date",
	KindFile:        "file",
	KindOptional:    "optional",
	KindApplication: "application",
	KindUnion:       "union",
	KindAny:         "any",
	KindNull:        "null",
	KindField:       "field",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Node is the root AST interface.
type Node interface {
	Kind() Kind
	String() string
	node()
}

// Literal is a quoted string ("date-time", '^[a-z]+$').
type Literal struct {
	Value string
}

// Name is a dotted identifier: a primitive ("string"), a model ("User") or a
// model property ("User.name").
type Name struct {
	Name string
}

// Array, Object, Enum, Date and File are the built-in container kinds. Their
// arguments come from an enclosing Application ("Array<User>", "User[]").
type (
	Array  struct{}
	Object struct{}
	Enum   struct{}
	Date   struct{}
	File   struct{}
)

// Optional marks an expression as not required ("string=").
type Optional struct {
	Elem Node
}

// Application applies type arguments to a base ("Array<User>", "string<'email'>").
type Application struct {
	Base Node
	Args []Node
}

// Union is "A|B|...". Null members are kept as *Null elements.
type Union struct {
	Elems []Node
}

// Any is "*" or "any".
type Any struct{}

// Null is the null literal.
type Null struct{}

// Field is a "key: type" pair, used as an Object argument.
type Field struct {
	Key   string
	Value Node
}

func (*Literal) Kind() Kind     { return KindLiteral }
func (*Name) Kind() Kind        { return KindName }
func (*Array) Kind() Kind       { return KindArray }
func (*Object) Kind() Kind      { return KindObject }
func (*Enum) Kind() Kind        { return KindEnum }
func (*Date) Kind() Kind        { return KindDate }
func (*File) Kind() Kind        { return KindFile }
func (*Optional) Kind() Kind    { return KindOptional }
func (*Application) Kind() Kind { return KindApplication }
func (*Union) Kind() Kind       { return KindUnion }
func (*Any) Kind() Kind         { return KindAny }
func (*Null) Kind() Kind        { return KindNull }
func (*Field) Kind() Kind       { return KindField }

func (*Literal) node()     {}
func (*Name) node()        {}
func (*Array) node()       {}
func (*Object) node()      {}
func (*Enum) node()        {}
func (*Date) node()        {}
func (*File) node()        {}
func (*Optional) node()    {}
func (*Application) node() {}
func (*Union) node()       {}
func (*Any) node()         {}
func (*Null) node()        {}
func (*Field) node()       {}

func (n *Literal) String() string { return quote(n.Value) }
func (n *Name) String() string    { return n.Name }
func (*Array) String() string     { return "Array" }
func (*Object) String() string    { return "Object" }
func (*Enum) String() string      { return "Enum" }
func (*Date) String() string      { return "Date" }
func (*File) String() string      { return "File" }
func (*Any) String() string       { return "*" }
func (*Null) String() string      { return "null" }

func (n *Optional) String() string { return str(n.Elem) + "=" }

func (n *Application) String() string {
	return str(n.Base) + "<" + join(n.Args, ", ") + ">"
}

func (n *Union) String() string { return "(" + join(n.Elems, "|") + ")" }

func (n *Field) String() string { return n.Key + ": " + str(n.Value) }

// Unwrap strips Optional wrappers and reports whether any was present.
func Unwrap(n Node) (Node, bool) {
	optional := false
	for {
		o, ok := n.(*Optional)
		if !ok {
			return n, optional
		}
		optional = true
		n = o.Elem
	}
}

func str(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func join(ns []Node, sep string) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = str(n)
	}
	return strings.Join(parts, sep)
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
