package coupling

import "fmt"

// Marshaller converts field values between the solver's DOF-indexed vectors
// and the coordinator's flat, positionally ordered arrays, using the
// ordering fixed by a NodeIndexMap. Its buffers are sized once, at
// construction, and reused for the duration of the run.
type Marshaller struct {
	imap       *NodeIndexMap
	components int
	out        []float64
}

// NewMarshaller builds a marshaller for fields with the given number of
// components per node: 1 for scalar fields, the spatial dimension for
// vector-valued fields. Vector components are interleaved per node,
// consistent with the coordinate array layout used for registration.
func NewMarshaller(imap *NodeIndexMap, components int) (*Marshaller, error) {
	if components < 1 {
		return nil, fmt.Errorf("%w: %d components per node", ErrConfiguration, components)
	}
	return &Marshaller{
		imap:       imap,
		components: components,
		out:        make([]float64, imap.Size()*components),
	}, nil
}

// ToExternal packs the boundary subset of src into the flat coordinator
// array: out[i*c+k] = src[DofAt(i)*c+k]. The returned slice is the
// marshaller's reused buffer; it is valid until the next call.
func (ms *Marshaller) ToExternal(src []float64) ([]float64, error) {
	c := ms.components
	for i := 0; i < ms.imap.Size(); i++ {
		base := ms.imap.DofAt(i) * c
		if base+c > len(src) {
			return nil, fmt.Errorf("%w: DOF %d exceeds source vector of length %d",
				ErrIndexRange, ms.imap.DofAt(i), len(src))
		}
		copy(ms.out[i*c:(i+1)*c], src[base:base+c])
	}
	return ms.out, nil
}

// FromExternal unpacks a flat coordinator array into the boundary value
// map: values[DofAt(i)*c+k] = flat[i*c+k]. Only mapped DOFs are touched;
// this is a partial update, not a full-vector overwrite.
func (ms *Marshaller) FromExternal(flat []float64, values BoundaryValueMap) error {
	c := ms.components
	if len(flat) != ms.imap.Size()*c {
		return fmt.Errorf("%w: flat array has length %d, want %d",
			ErrIndexRange, len(flat), ms.imap.Size()*c)
	}
	if c == 1 {
		for i := 0; i < ms.imap.Size(); i++ {
			values[ms.imap.DofAt(i)] = flat[i]
		}
		return nil
	}
	for i := 0; i < ms.imap.Size(); i++ {
		base := ms.imap.DofAt(i) * c
		for k := 0; k < c; k++ {
			values[base+k] = flat[i*c+k]
		}
	}
	return nil
}

// Width returns the flat array length for one exchange.
func (ms *Marshaller) Width() int { return len(ms.out) }
