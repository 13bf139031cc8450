// Package slot defines the interfaces of a reactive cell graph.
//
// A cell holds either one value (package value) or an array of values
// (package array). Cells are wired so that a controller drives the
// cells that mirror it: reads pull backward along controller chains and
// are cached, writes and structural changes push forward to dependents.
// Array cells share their storage with their controller and fork it on
// detach. Constraints (package constraint) keep the sizes of a set of
// array cells in line.
//
// The graph is single-threaded: no operation is safe for concurrent use,
// and every callback runs synchronously on the caller's goroutine.
package slot

// Dependent receives change notifications from a Source.
//
// Callbacks may call back into the graph, including removing themselves
// from the source that is notifying them.
type Dependent interface {
	// ValueChanged reports that the whole value of the source may have changed.
	ValueChanged()

	// RangeChanged reports that elements [start, end) of an array source changed.
	RangeChanged(start, end int)

	// Resized reports that an array source now has size elements.
	// A non-nil error aborts the resize that triggered it.
	Resized(size int) error

	// VetoResize reports whether the dependent refuses a resize of the
	// source to size. It must not mutate the graph.
	VetoResize(size int) bool

	// ControllerDeleted reports that src is being closed.
	// The dependent should stop referring to src.
	ControllerDeleted(src Source)
}

// Source is anything dependents can register with.
type Source interface {
	// AddDependent registers d and immediately calls d.ValueChanged.
	// Adding a registered dependent is a no-op.
	AddDependent(d Dependent)

	// RemoveDependent unregisters d.
	// Returns ErrUnknownDependent if d is not registered.
	RemoveDependent(d Dependent) error

	// HasDependent reports whether d is registered.
	HasDependent(d Dependent) bool
}

// Value is the type-erased view of a scalar cell.
type Value interface {
	Source

	// TypeName names the value type, e.g. "float64".
	TypeName() string

	// IsCompatible reports whether other can be wired to this cell.
	IsCompatible(other Value) bool

	// Connect makes this cell the controller of target.
	Connect(target Value) error

	// Disconnect undoes Connect.
	// Returns ErrNoSuchConnection if this cell does not control target.
	Disconnect(target Value) error

	// SetController wires this cell to ctrl, or unwires it when ctrl is nil.
	SetController(ctrl Value) error

	// Controller returns the current controller, or nil.
	Controller() Value

	// NotifyDependents calls ValueChanged on every dependent.
	NotifyDependents()

	// Any returns the current value.
	Any() any

	// SetAny sets the current value.
	// Returns ErrIncompatibleTypes if v has the wrong type.
	SetAny(v any) error

	// Close unwires the cell and tells its dependents it is going away.
	Close()
}

// Array is the type-erased view of an array cell.
type Array interface {
	Source

	TypeName() string
	IsCompatible(other Array) bool

	// Size is the number of logical elements.
	Size() int

	// Multiplicity is the number of scalar components per element.
	Multiplicity() int

	// Resizable reports whether Resize(n) would succeed. When ignoreLocal
	// is set the cell's own constraint is not consulted.
	Resizable(n int, ignoreLocal bool) bool

	// Resize changes the number of elements, preserving existing ones.
	Resize(n int) error

	// CopyValues copies elements [begin, end) into target starting at index.
	// Negative positions count from the end.
	CopyValues(begin, end int, target Array, index int) error

	Connect(target Array) error
	Disconnect(target Array) error
	SetController(ctrl Array) error
	Controller() Array

	// Constraint returns the local constraint, or nil.
	Constraint() Constraint

	// SetConstraint binds a local constraint, registering the cell with
	// it and leaving the previous one. A nil c only unbinds.
	SetConstraint(c Constraint) error

	// NotifyDependents calls ValueChanged on every dependent.
	NotifyDependents()

	// Format renders the elements for display.
	Format() string

	Close()
}

// Constraint owns an authoritative size that every registered array
// cell must match.
type Constraint interface {
	// Size is the authoritative size.
	Size() int

	// Register adds cell and resizes it to Size.
	Register(cell Array) error

	// Unregister removes cell without resizing it.
	Unregister(cell Array) error

	// Registered reports whether cell is registered.
	Registered(cell Array) bool
}
