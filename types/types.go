// Package types holds the scalar type model shared by the code generator
// and the kernel dispatcher: C element types, their host-side widths, and
// the process-wide floating point precision policy.
package types

import "fmt"

// DataType represents the precision of numerical data
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
	INT32
	INT64
	UINT32
	UINT64
)

// SizeOfType returns the size in bytes of a data type
func SizeOfType(dt DataType) int64 {
	switch dt {
	case Float32, INT32, UINT32:
		return 4
	default:
		return 8
	}
}

// CName returns the device-side type name for a DataType
func (dt DataType) CName() string {
	switch dt {
	case Float32:
		return "float"
	case Float64:
		return "double"
	case INT32:
		return "int"
	case INT64:
		return "long"
	case UINT32:
		return "uint"
	case UINT64:
		return "ulong"
	default:
		return "double"
	}
}

// FromCName maps a device-side element type name to its DataType.
func FromCName(name string) (DataType, error) {
	switch name {
	case "float":
		return Float32, nil
	case "double":
		return Float64, nil
	case "int":
		return INT32, nil
	case "long":
		return INT64, nil
	case "uint":
		return UINT32, nil
	case "ulong":
		return UINT64, nil
	}
	return 0, fmt.Errorf("unknown element type %q", name)
}

// SizeOf returns the byte width of a device-side element type name.
func SizeOf(name string) (int64, error) {
	dt, err := FromCName(name)
	if err != nil {
		return 0, err
	}
	return SizeOfType(dt), nil
}

// Kind classifies a declared kernel parameter.
type Kind int

const (
	// Scalar is a plain value passed by copy.
	Scalar Kind = iota + 1
	// Buffer is a device-resident array passed by its device handle.
	Buffer
	// Local is work-group scratch memory sized at launch time.
	Local
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Buffer:
		return "buffer"
	case Local:
		return "local"
	default:
		return "unknown"
	}
}

// KnownType is the declared type of one kernel parameter: the full C
// declaration text, the base element type, and the parameter kind. It is
// what the translator declares per parameter and what the dispatcher uses
// for argument marshalling.
type KnownType struct {
	CType string // full declaration type, e.g. "GLOBAL_MEM double*"
	Base  string // element type, e.g. "double"
	Kind  Kind
}

// ScalarType declares a plain scalar parameter.
func ScalarType(base string) KnownType {
	return KnownType{CType: base, Base: base, Kind: Scalar}
}

// BufferType declares a device buffer parameter.
func BufferType(base string) KnownType {
	return KnownType{CType: "GLOBAL_MEM " + base + "*", Base: base, Kind: Buffer}
}

// LocalType declares a work-group scratch memory parameter.
func LocalType(base string) KnownType {
	return KnownType{CType: "LOCAL_MEM " + base + "*", Base: base, Kind: Local}
}
