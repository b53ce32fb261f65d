package material

// Kind is the shading variant chosen for a mesh.
type Kind int

const (
	KindOther Kind = iota
	KindFace
)

// FaceName is the authoring-time name that marks the face mesh.
const FaceName = "face"

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFace:
		return "face"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Classify picks the variant for a mesh by its material name.
// Only an exact, case-sensitive match of FaceName selects KindFace.
func Classify(name string) Kind {
	if name == FaceName {
		return KindFace
	}
	return KindOther
}
