package annotate

// ProcessCandidates collapses one region's raw candidates to the configured
// report level: every candidate at exon level, the best per transcript at
// transcript level, and one per gene at gene level.
func ProcessCandidates(cands []Candidate, cfg *Config) []Candidate {
	if len(cands) == 0 {
		return nil
	}

	switch cfg.Level {
	case LevelTranscript:
		return ApplyRules(cands, groupBy(cands, byTranscript), cfg)
	case LevelGene:
		perTranscript := ApplyRules(cands, groupBy(cands, byTranscript), cfg)
		return SelectTranscript(perTranscript, groupBy(perTranscript, byGene), cfg.Rules)
	}
	return cands
}
