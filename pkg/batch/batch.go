// Package batch selects which feed implementations get cooked and verified,
// in one of two modes: targeted (explicit identifiers, all must exist) or
// scan-all (every implementation declaring at least one step, subject to a
// local source availability precheck).
package batch

import (
	"strings"

	"github.com/recookio/recook/pkg/cooker"
	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/feed"
	"github.com/recookio/recook/pkg/logging"
	"github.com/recookio/recook/pkg/recipe"
	"github.com/recookio/recook/pkg/verify"
)

// Status classifies one implementation's outcome
type Status string

const (
	StatusOK      Status = "ok"      // cooked, recorded identity already matched
	StatusUpdated Status = "updated" // cooked, feed corrections applied
	StatusSkipped Status = "skipped" // not cooked (no steps, or sources absent with digest on record)
	StatusFailed  Status = "failed"  // recipe aborted; rest of the batch unaffected
)

// ImplReport is one row of the run's outcome
type ImplReport struct {
	ID      string
	Version string
	Status  Status
	Detail  string
}

// Runner drives cook+verify over a feed's implementations
type Runner struct {
	Doc    *feed.Document
	Cooker *cooker.Cooker

	// Algorithms is the default algorithm list, used only when an
	// implementation has no recorded manifest digest.
	Algorithms []string
}

// Targeted cooks and verifies exactly the given implementation ids. Any id
// not present in the feed is a fatal error naming all unmatched ids; nothing
// is cooked in that case. A failure of one requested implementation is fatal
// for the run.
func (r *Runner) Targeted(ids []string) ([]ImplReport, error) {
	byID := make(map[string]*feed.Implementation)
	for _, impl := range r.Doc.Implementations() {
		byID[impl.ID()] = impl
	}

	var missing []string
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Newf(errors.ErrBatchSelection,
			"implementations not found in feed: %s", strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}

	var reports []ImplReport
	for _, id := range ids {
		report, err := r.processOne(byID[id])
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

// ScanAll considers every implementation declaring at least one step. Before
// cooking, each step's local source file is checked: when any are missing,
// an implementation with a recorded manifest digest is assumed valid and
// skipped with a diagnostic, while one without a recorded digest is a fatal
// error (there is no way to validate an un-buildable, unverified
// implementation). Per-recipe failures abort that implementation only.
//
// Known gap, kept for compatibility: a skipped implementation is never
// re-verified, even though its recorded digest may be stale.
func (r *Runner) ScanAll() ([]ImplReport, error) {
	logger := logging.GetLogger("batch")

	var reports []ImplReport
	for _, impl := range r.Doc.Implementations() {
		rec, err := recipe.FromImplementation(impl.Element())
		if err != nil {
			reports = append(reports, ImplReport{
				ID: impl.ID(), Version: impl.Version(),
				Status: StatusFailed, Detail: err.Error(),
			})
			continue
		}
		if !rec.Actionable() {
			continue
		}

		if missing := r.missingSources(rec); len(missing) > 0 {
			if len(rec.Digests) == 0 {
				return reports, errors.Newf(errors.ErrSourceMissing,
					"implementation %q has no recorded digest and its sources are not available locally: %s",
					impl.ID(), strings.Join(missing, ", "))
			}
			logger.Warn().
				Str("id", impl.ID()).
				Strs("missing", missing).
				Msg("Sources absent locally, assuming recorded digest is valid")
			reports = append(reports, ImplReport{
				ID: impl.ID(), Version: impl.Version(),
				Status: StatusSkipped,
				Detail: "sources absent locally: " + strings.Join(missing, ", "),
			})
			continue
		}

		report, _ := r.processOne(impl)
		reports = append(reports, report)
	}
	return reports, nil
}

// missingSources returns the hrefs whose local store files are absent
func (r *Runner) missingSources(rec *recipe.Recipe) []string {
	var missing []string
	for _, href := range rec.SourceHrefs() {
		if !r.Cooker.Store.Contains(href) {
			missing = append(missing, href)
		}
	}
	return missing
}

// processOne cooks and verifies a single implementation and applies any
// resulting patches to the in-memory document. The returned error carries
// the failure for callers that treat it as fatal; the report carries it for
// callers that keep going.
func (r *Runner) processOne(impl *feed.Implementation) (ImplReport, error) {
	report := ImplReport{ID: impl.ID(), Version: impl.Version()}

	rec, err := recipe.FromImplementation(impl.Element())
	if err != nil {
		report.Status = StatusFailed
		report.Detail = err.Error()
		return report, err
	}
	if !rec.Actionable() {
		report.Status = StatusSkipped
		report.Detail = "no build steps declared"
		return report, nil
	}

	var result *verify.Result
	err = r.Cooker.Cook(rec, func(root string) error {
		var verr error
		result, verr = verify.Tree(root, rec, r.Algorithms)
		return verr
	})
	if err != nil {
		report.Status = StatusFailed
		report.Detail = err.Error()
		return report, err
	}

	if len(result.Patches) == 0 {
		report.Status = StatusOK
		return report, nil
	}
	r.Doc.Apply(impl, result.Patches)
	report.Status = StatusUpdated
	report.Detail = patchSummary(result.Patches)
	return report, nil
}

func patchSummary(patches []feed.Patch) string {
	parts := make([]string, 0, len(patches))
	for _, p := range patches {
		parts = append(parts, p.Attr)
	}
	return "corrected: " + strings.Join(parts, ", ")
}
