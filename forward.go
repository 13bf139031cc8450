package slot

// Nop implements Dependent with no-op callbacks.
// Embed it to implement only the callbacks you need.
type Nop struct{}

func (Nop) ValueChanged()               {}
func (Nop) RangeChanged(start, end int) {}
func (Nop) Resized(size int) error      { return nil }
func (Nop) VetoResize(size int) bool    { return false }
func (Nop) ControllerDeleted(Source)    {}

var _ Dependent = Nop{}

// Forward lets an owning object receive notifications through a table
// of callbacks bound at initialization. Unbound callbacks are no-ops.
//
// Always register a *Forward: dependents are compared by identity.
//
//	fwd := &slot.Forward{Value: mesh.invalidateBounds}
//	points.AddDependent(fwd)
type Forward struct {
	Value   func()
	Range   func(start, end int)
	Resize  func(size int) error
	Veto    func(size int) bool
	Deleted func(src Source)
}

var _ Dependent = (*Forward)(nil)

func (f *Forward) ValueChanged() {
	if f.Value != nil {
		f.Value()
	}
}

// RangeChanged calls Range, or Value when only Value is bound.
func (f *Forward) RangeChanged(start, end int) {
	switch {
	case f.Range != nil:
		f.Range(start, end)
	case f.Value != nil:
		f.Value()
	}
}

func (f *Forward) Resized(size int) error {
	if f.Resize != nil {
		return f.Resize(size)
	}
	return nil
}

func (f *Forward) VetoResize(size int) bool {
	return f.Veto != nil && f.Veto(size)
}

func (f *Forward) ControllerDeleted(src Source) {
	if f.Deleted != nil {
		f.Deleted(src)
	}
}
