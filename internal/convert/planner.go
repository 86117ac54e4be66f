package convert

// Planner groups fetched files into size-bounded batches, preserving the
// selector's ordering.
type Planner struct {
	// SizeLimit bounds the cumulative content size of a batch.
	SizeLimit int
	// GroupByPriority packs each priority tier fully before the next so a
	// batch never interleaves unrelated tiers. Input order within a tier
	// is kept.
	GroupByPriority bool
}

// Plan packs files greedily in input order: a batch closes when adding
// the next file would push it past SizeLimit. A single file larger than
// the limit still forms its own batch; the limit bounds additional
// growth, it is not a per-file cap.
func (p Planner) Plan(files []SourceFile) []Batch {
	if len(files) == 0 {
		return nil
	}
	if p.GroupByPriority {
		tiers := [][]SourceFile{}
		for _, tier := range []int{PriorityManifest, PriorityEntrypoint, PriorityOther} {
			var group []SourceFile
			for _, f := range files {
				if f.Priority == tier {
					group = append(group, f)
				}
			}
			if len(group) > 0 {
				tiers = append(tiers, group)
			}
		}
		// Files with out-of-range tiers keep their place at the end.
		var rest []SourceFile
		for _, f := range files {
			if f.Priority < PriorityManifest || f.Priority > PriorityOther {
				rest = append(rest, f)
			}
		}
		if len(rest) > 0 {
			tiers = append(tiers, rest)
		}
		var out []Batch
		for _, group := range tiers {
			out = append(out, p.pack(group)...)
		}
		return out
	}
	return p.pack(files)
}

func (p Planner) pack(files []SourceFile) []Batch {
	var batches []Batch
	var cur []SourceFile
	size := 0
	for _, f := range files {
		if len(cur) > 0 && size+f.Size > p.SizeLimit {
			batches = append(batches, Batch{Files: cur})
			cur = nil
			size = 0
		}
		cur = append(cur, f)
		size += f.Size
	}
	if len(cur) > 0 {
		batches = append(batches, Batch{Files: cur})
	}
	return batches
}
