package slot

import "errors"

var (
	ErrIncompatibleTypes     = errors.New("incompatible types")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrSelfConstrained       = errors.New("resize refused by own constraint")
	ErrDependentVetoed       = errors.New("resize vetoed by dependent")
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrUnknownRegistration   = errors.New("unknown registration")
	ErrOutOfMemory           = errors.New("out of memory")
	ErrSizeMismatch          = errors.New("size mismatch")
	ErrInvalidSize           = errors.New("invalid size")
	ErrUnknownDependent      = errors.New("unknown dependent")
	ErrNoSuchConnection      = errors.New("no such connection")
	ErrCycle                 = errors.New("controller cycle")
	ErrClosed                = errors.New("closed")
)
