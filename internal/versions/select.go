package versions

// Policy controls version selection.
type Policy struct {
	// FallbackToCompatible walks down from the newest candidate and picks the
	// first one Accept approves instead of reporting the newest as-is.
	FallbackToCompatible bool
	// Accept is consulted only when FallbackToCompatible is set.
	Accept func(Candidate) bool
}

// Select picks the highest version strictly greater than current. Equal
// versions resolve to whichever came first in cands. ok is false when no
// candidate is newer. cands is not modified.
func Select(cands []Candidate, current int, policy Policy) (Candidate, bool) {
	newer := Newer(cands, current)
	if len(newer) == 0 {
		return Candidate{}, false
	}
	if policy.FallbackToCompatible && policy.Accept != nil {
		for _, c := range newer {
			if policy.Accept(c) {
				return c, true
			}
		}
	}
	return newer[0], true
}

// Newer returns the candidates above current, highest version first. Equal
// versions keep their input order.
func Newer(cands []Candidate, current int) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Version() <= current {
			continue
		}
		i := len(out)
		for i > 0 && out[i-1].Version() < c.Version() {
			i--
		}
		out = append(out, Candidate{})
		copy(out[i+1:], out[i:])
		out[i] = c
	}
	return out
}

// Highest returns the candidate with the greatest version, first in input
// order on ties.
func Highest(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Version() > best.Version() {
			best = c
		}
	}
	return best, true
}
