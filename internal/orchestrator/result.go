package orchestrator

// PackageOutcome records how one (version, package) build attempt ended.
type PackageOutcome string

const (
	OutcomeSucceeded          PackageOutcome = "succeeded"
	OutcomeSkippedNoToolchain PackageOutcome = "skipped_no_toolchain"
	OutcomeFailed             PackageOutcome = "failed"
)

// RunResult accumulates which (version, package) pairs produced published
// documentation. It is append-only and is the sole source of truth for which
// index and redirect artifacts get generated. Version keys keep insertion
// order (= processing order).
type RunResult struct {
	order     []string
	succeeded map[string][]string
}

// NewRunResult creates an empty accumulator.
func NewRunResult() *RunResult {
	return &RunResult{succeeded: make(map[string][]string)}
}

// Append records a successfully built and relocated package for a version.
func (r *RunResult) Append(version, pkg string) {
	if _, ok := r.succeeded[version]; !ok {
		r.order = append(r.order, version)
	}
	r.succeeded[version] = append(r.succeeded[version], pkg)
}

// Empty reports whether nothing succeeded across the whole run.
func (r *RunResult) Empty() bool {
	return len(r.order) == 0
}

// Versions returns the versions with at least one succeeded package, in
// processing order.
func (r *RunResult) Versions() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Packages returns the succeeded packages for a version, in processing order.
func (r *RunResult) Packages(version string) []string {
	pkgs := r.succeeded[version]
	out := make([]string, len(pkgs))
	copy(out, pkgs)
	return out
}

// DefaultVersion returns the first version (by processing order) with at
// least one succeeded package, or "" if nothing succeeded.
func (r *RunResult) DefaultVersion() string {
	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// OtherVersions returns every succeeded version except the given one, in
// processing order. Used for sibling navigation links.
func (r *RunResult) OtherVersions(version string) []string {
	var out []string
	for _, v := range r.order {
		if v != version {
			out = append(out, v)
		}
	}
	return out
}
