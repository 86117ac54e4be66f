package convert

import (
	"path"
	"sort"
	"strings"
)

// Selector classifies and ranks raw tree entries into the ordered list of
// files worth converting.
type Selector struct {
	policy Policy
}

func NewSelector(policy Policy) *Selector {
	return &Selector{policy: policy}
}

// Select filters entries down to convertible blobs, assigns priority
// tiers and returns them sorted by (priority, path). The result is
// truncated to the policy's MaxFiles.
func (s *Selector) Select(entries []TreeEntry) []Selected {
	out := make([]Selected, 0, len(entries))
	for _, e := range entries {
		if e.Type != "blob" {
			continue
		}
		p := strings.TrimPrefix(strings.TrimSpace(e.Path), "/")
		if p == "" || s.denied(p) || !s.allowed(p) {
			continue
		}
		out = append(out, Selected{Path: p, Priority: s.priority(p)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Path < out[j].Path
	})
	if s.policy.MaxFiles > 0 && len(out) > s.policy.MaxFiles {
		out = out[:s.policy.MaxFiles]
	}
	return out
}

func (s *Selector) denied(p string) bool {
	base := path.Base(p)
	for _, f := range s.policy.DenyFiles {
		if strings.EqualFold(base, f) {
			return true
		}
	}
	if strings.HasSuffix(strings.ToLower(base), ".log") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		for _, d := range s.policy.DenyDirs {
			if strings.EqualFold(seg, d) {
				return true
			}
		}
	}
	return false
}

func (s *Selector) allowed(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext != "" {
		for _, a := range s.policy.AllowExts {
			if ext == a {
				return true
			}
		}
	}
	base := strings.ToLower(path.Base(p))
	stem := strings.TrimSuffix(base, ext)
	for _, n := range s.policy.AllowNames {
		if base == n || stem == n {
			return true
		}
	}
	return false
}

func (s *Selector) priority(p string) int {
	base := strings.ToLower(path.Base(p))
	for _, m := range s.policy.ManifestNames {
		if base == m {
			return PriorityManifest
		}
	}
	for _, marker := range s.policy.EntrypointMarkers {
		if strings.Contains(base, marker) {
			return PriorityEntrypoint
		}
	}
	return PriorityOther
}
