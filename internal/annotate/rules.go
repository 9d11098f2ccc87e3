package annotate

import (
	"sort"
	"strconv"
	"strings"
)

// groupBy groups candidate indices by key, groups in first-appearance order.
func groupBy(cands []Candidate, key func(*Candidate) string) [][]int {
	pos := make(map[string]int)
	var groups [][]int
	for i := range cands {
		k := key(&cands[i])
		j, ok := pos[k]
		if !ok {
			j = len(groups)
			pos[k] = j
			groups = append(groups, nil)
		}
		groups[j] = append(groups[j], i)
	}
	return groups
}

func byTranscript(c *Candidate) string { return c.Gene + "\x00" + c.Transcript }

func byGene(c *Candidate) string { return c.Gene }

func filter(cands []Candidate, keep func(*Candidate) bool) []Candidate {
	var out []Candidate
	for i := range cands {
		if keep(&cands[i]) {
			out = append(out, cands[i])
		}
	}
	return out
}

func pick(cands []Candidate, idx []int) []Candidate {
	out := make([]Candidate, len(idx))
	for i, j := range idx {
		out[i] = cands[j]
	}
	return out
}

// topPriority returns the candidates whose area comes first in rules.
// Areas missing from rules never qualify.
func topPriority(cands []Candidate, rules []Area) []Candidate {
	for _, a := range rules {
		if best := filter(cands, func(c *Candidate) bool { return c.Area == a }); len(best) > 0 {
			return best
		}
	}
	return nil
}

// ApplyRules reduces each transcript group to its best candidates.
//
// A sole candidate is kept as is. Otherwise the region and area thresholds
// are applied in turn, each falling back to its input when nothing passes;
// areas without a fixed width are exempt from the area threshold. The
// highest-priority area wins and, within it, every candidate sharing the
// largest PctgRegion is kept.
func ApplyRules(cands []Candidate, groups [][]int, cfg *Config) []Candidate {
	var out []Candidate
	for _, idx := range groups {
		if len(idx) == 1 {
			out = append(out, cands[idx[0]])
			continue
		}

		group := pick(cands, idx)

		passed := filter(group, func(c *Candidate) bool {
			return c.PctgRegion >= cfg.PercRegion
		})
		if len(passed) == 0 {
			passed = group
		}

		covered := filter(passed, func(c *Candidate) bool {
			return c.PctgArea >= cfg.PercArea || c.PctgArea == NotApplicable
		})
		if len(covered) == 0 {
			covered = passed
		}

		best := topPriority(covered, cfg.Rules)
		if len(best) == 0 {
			continue
		}

		top := best[0].PctgRegion
		for _, c := range best[1:] {
			top = max(top, c.PctgRegion)
		}
		out = append(out, filter(best, func(c *Candidate) bool { return c.PctgRegion == top })...)
	}
	return out
}

// SelectTranscript reduces each gene group to one candidate. Transcripts
// tied on the highest-priority area are merged; a group with no area in
// rules keeps its first candidate.
func SelectTranscript(cands []Candidate, groups [][]int, rules []Area) []Candidate {
	var out []Candidate
	for _, idx := range groups {
		if len(idx) == 1 {
			out = append(out, cands[idx[0]])
			continue
		}

		group := pick(cands, idx)
		best := topPriority(group, rules)
		switch len(best) {
		case 0:
			out = append(out, group[0])
		case 1:
			out = append(out, best[0])
		default:
			out = append(out, mergeCandidates(best))
		}
	}
	return out
}

// mergeCandidates folds same-gene, same-area candidates into one. The
// result does not depend on input order: labels are sorted unions and the
// remaining fields come from the candidate ranked first by representativeLess.
func mergeCandidates(cands []Candidate) Candidate {
	sorted := append([]Candidate(nil), cands...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return representativeLess(&sorted[i], &sorted[j])
	})

	merged := sorted[0]
	var transcripts, exons []string
	for _, c := range sorted {
		transcripts = append(transcripts, strings.Split(c.Transcript, ",")...)
		exons = append(exons, strings.Split(c.Exon, ",")...)
		merged.PctgRegion = max(merged.PctgRegion, c.PctgRegion)
		merged.PctgArea = max(merged.PctgArea, c.PctgArea)
	}
	merged.Transcript = strings.Join(sortedUnique(transcripts, strings.Compare), ",")
	merged.Exon = strings.Join(sortedUnique(exons, compareLabels), ",")
	return merged
}

func representativeLess(a, b *Candidate) bool {
	switch {
	case a.PctgRegion != b.PctgRegion:
		return a.PctgRegion > b.PctgRegion
	case a.Transcript != b.Transcript:
		return a.Transcript < b.Transcript
	case a.Exon != b.Exon:
		return compareLabels(a.Exon, b.Exon) < 0
	case a.Start != b.Start:
		return a.Start < b.Start
	case a.End != b.End:
		return a.End < b.End
	}
	return a.Distance < b.Distance
}

// compareLabels orders exon labels numerically when both are numbers.
func compareLabels(a, b string) int {
	x, errA := strconv.Atoi(a)
	y, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func sortedUnique(items []string, cmp func(a, b string) int) []string {
	sort.SliceStable(items, func(i, j int) bool { return cmp(items[i], items[j]) < 0 })
	var out []string
	for _, s := range items {
		if len(out) > 0 && out[len(out)-1] == s {
			continue
		}
		out = append(out, s)
	}
	return out
}
