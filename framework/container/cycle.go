package container

// resolution is the state of one top-level Resolve call. It is created per
// call and never shared, so concurrent resolutions cannot see each other's
// in-flight services.
type resolution struct {
	scope *scope

	// in-flight service names, plus the same names in entry order for messages
	inFlight map[string]struct{}
	chain    []string

	// nearest singleton currently under construction, "" if none
	singleton string
}

func newResolution(s *scope) *resolution {
	return &resolution{scope: s, inFlight: make(map[string]struct{})}
}

// enter marks name as under construction. It fails if name is already on
// the chain. Every successful enter must be paired with leave.
func (r *resolution) enter(name string) error {
	if _, busy := r.inFlight[name]; busy {
		cycle := append(r.path(), name)
		return resolutionError(ErrCircularDependency, name, "", cycle)
	}
	r.inFlight[name] = struct{}{}
	r.chain = append(r.chain, name)
	return nil
}

func (r *resolution) leave(name string) {
	delete(r.inFlight, name)
	if n := len(r.chain); n > 0 && r.chain[n-1] == name {
		r.chain = r.chain[:n-1]
	}
}

// path returns a copy of the current chain.
func (r *resolution) path() []string {
	out := make([]string, len(r.chain))
	copy(out, r.chain)
	return out
}
