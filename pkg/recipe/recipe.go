package recipe

// Recipe is an implementation's ordered step list together with the identity
// the feed records for it.
type Recipe struct {
	// ID is the implementation's declared identifier. It may itself encode
	// an algorithm=digest pair, in which case verification re-derives it.
	ID string

	// Version is an opaque display-only string.
	Version string

	// Steps execute strictly in order. A Recipe with zero steps is not
	// actionable: it is skipped by selection policy, never an error.
	Steps []Step

	// Digests maps algorithm name to the digest recorded in the feed's
	// manifest-digest element. Nil when the feed has no such element.
	Digests map[string]string
}

// Actionable reports whether the recipe declares at least one step
func (r *Recipe) Actionable() bool {
	return len(r.Steps) > 0
}

// SourceHrefs returns the declared source URLs of all fetch steps, in step
// order. Used for the scan-all local-availability precheck.
func (r *Recipe) SourceHrefs() []string {
	var hrefs []string
	for _, step := range r.Steps {
		switch s := step.(type) {
		case FetchArchive:
			hrefs = append(hrefs, s.Href)
		case FetchFile:
			hrefs = append(hrefs, s.Href)
		}
	}
	return hrefs
}
