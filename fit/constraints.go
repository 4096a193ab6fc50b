package fit

import "github.com/sitelle-tools/specfit/lines"

// componentMargin is the minimum wavenumber separation, in cm⁻¹,
// enforced between repeated components of the same line.
const componentMargin = 10.0

// ConstraintKind discriminates the constraint records consumed by the
// solver.
type ConstraintKind int

const (
	// ConstraintVelocityEqual ties two lines to a common Doppler
	// velocity, each through its own rest wavelength.
	ConstraintVelocityEqual ConstraintKind = iota + 1
	// ConstraintWidthEqual ties two width parameters to a common value.
	ConstraintWidthEqual
	// ConstraintOrdering forces line I's position to exceed line J's by
	// at least Margin, breaking the permutation symmetry between
	// components of the same line.
	ConstraintOrdering
)

// Constraint is an immutable record tying two lines' parameters
// together. I and J are line indices into the parameter vector layout;
// the rest wavelengths are resolved once at build time.
type Constraint struct {
	Kind   ConstraintKind
	I, J   int
	RestI  float64 // nm
	RestJ  float64 // nm
	Margin float64 // cm⁻¹, ordering only
}

// Violation returns the constraint residual for the parameter vector:
// zero when satisfied, and for ordering constraints zero whenever the
// required separation holds.
func (c Constraint) Violation(params []float64) float64 {
	switch c.Kind {
	case ConstraintVelocityEqual:
		vi := lines.VelocityFromPosition(c.RestI, params[3*c.I+1])
		vj := lines.VelocityFromPosition(c.RestJ, params[3*c.J+1])

		return vi - vj
	case ConstraintWidthEqual:
		return params[3*c.I+2] - params[3*c.J+2]
	case ConstraintOrdering:
		gap := params[3*c.I+1] - params[3*c.J+1] - c.Margin
		if gap >= 0 {
			return 0
		}

		return gap
	default:
		return 0
	}
}

// buildConstraints derives the constraint set from the line groupings.
// Each non-trivial group contributes one equality record per member
// beyond the first, anchored to the group's first member. Repeated line
// names optionally contribute ordering records.
func buildConstraints(names []string, velGroups, sigmaGroups []int, rest []float64, orderComponents bool) []Constraint {
	var constraints []Constraint

	for _, members := range groupIndices(velGroups) {
		anchor := members[0]
		for _, m := range members[1:] {
			constraints = append(constraints, Constraint{
				Kind:  ConstraintVelocityEqual,
				I:     anchor,
				J:     m,
				RestI: rest[anchor],
				RestJ: rest[m],
			})
		}
	}

	for _, members := range groupIndices(sigmaGroups) {
		anchor := members[0]
		for _, m := range members[1:] {
			constraints = append(constraints, Constraint{
				Kind: ConstraintWidthEqual,
				I:    anchor,
				J:    m,
			})
		}
	}

	if orderComponents {
		for _, members := range nameIndices(names) {
			anchor := members[0]
			for _, m := range members[1:] {
				constraints = append(constraints, Constraint{
					Kind:   ConstraintOrdering,
					I:      anchor,
					J:      m,
					Margin: componentMargin,
				})
			}
		}
	}

	return constraints
}

// groupIndices collects the member indices of each group id with more
// than one member, in first-appearance order.
func groupIndices(groups []int) [][]int {
	byID := make(map[int][]int)

	var order []int

	for i, id := range groups {
		if _, seen := byID[id]; !seen {
			order = append(order, id)
		}

		byID[id] = append(byID[id], i)
	}

	var out [][]int

	for _, id := range order {
		if members := byID[id]; len(members) > 1 {
			out = append(out, members)
		}
	}

	return out
}

// nameIndices collects the indices of each repeated line name, in
// first-appearance order.
func nameIndices(names []string) [][]int {
	byName := make(map[string][]int)

	var order []string

	for i, name := range names {
		if _, seen := byName[name]; !seen {
			order = append(order, name)
		}

		byName[name] = append(byName[name], i)
	}

	var out [][]int

	for _, name := range order {
		if members := byName[name]; len(members) > 1 {
			out = append(out, members)
		}
	}

	return out
}
