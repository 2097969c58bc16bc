package herald

// A BellState labels the outcome of a Bell-state measurement. A linear-
// optical measurement distinguishes the two antisymmetric states; the
// symmetric ones it can at best report as a single ambiguous outcome.
type BellState int

const (
	// Inconclusive means no Bell state could be assigned: the photons
	// missed the coincidence window, interference failed, or the
	// detection gate did not fire.
	Inconclusive BellState = iota

	// PsiMinus and PsiPlus are the antisymmetric Bell states, the two
	// a linear-optical apparatus can resolve.
	PsiMinus
	PsiPlus

	// PhiPlus and PhiMinus are the symmetric Bell states. They appear
	// only as selector-internal draws; a measurement reports them
	// collapsed into AmbiguousSymmetric.
	PhiPlus
	PhiMinus

	// AmbiguousSymmetric is the collapsed report of a symmetric draw.
	AmbiguousSymmetric
)

// String returns the conventional label for s.
func (s BellState) String() string {
	switch s {
	case PsiMinus:
		return "Ψ⁻"
	case PsiPlus:
		return "Ψ⁺"
	case PhiPlus:
		return "Φ⁺"
	case PhiMinus:
		return "Φ⁻"
	case AmbiguousSymmetric:
		return "Ambiguous_Symmetric"
	}
	return "Inconclusive"
}

// Antisymmetric reports whether s is one of the two Bell states a
// linear-optical measurement can resolve unambiguously.
func (s BellState) Antisymmetric() bool {
	return s == PsiMinus || s == PsiPlus
}
