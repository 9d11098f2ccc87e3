package annotate

import (
	"errors"
	"fmt"
	"strings"
)

// ReportLevel selects how candidates are collapsed for output.
type ReportLevel int

const (
	LevelExon ReportLevel = iota
	LevelTranscript
	LevelGene
)

// ParseReportLevel parses "exon", "transcript" or "gene" (case-insensitive).
func ParseReportLevel(s string) (ReportLevel, error) {
	switch strings.ToLower(s) {
	case "exon":
		return LevelExon, nil
	case "transcript":
		return LevelTranscript, nil
	case "gene":
		return LevelGene, nil
	}
	return 0, fmt.Errorf("report level %q: must be one of exon, transcript or gene", s)
}

func (l ReportLevel) String() string {
	switch l {
	case LevelTranscript:
		return "transcript"
	case LevelGene:
		return "gene"
	}
	return "exon"
}

// Config holds the matching parameters. The matcher treats it as read-only
// and assumes it passed Validate.
type Config struct {
	Rules      []Area      // zone priority, highest first
	PercArea   float64     // minimum share of a zone covered (0-100)
	PercRegion float64     // minimum share of the region covered (0-100)
	TSS        int64       // TSS zone width (bp)
	TTS        int64       // TTS zone width (bp)
	Promoter   int64       // promoter zone width (bp)
	Distance   int64       // maximum reported distance (bp)
	Level      ReportLevel // output granularity
}

// DefaultConfig returns the classic defaults: TSS 200bp, TTS 0bp,
// promoter 1300bp, 10kb distance, 90% area and 50% region thresholds.
func DefaultConfig() *Config {
	return &Config{
		Rules:      append([]Area(nil), AllAreas...),
		PercArea:   90,
		PercRegion: 50,
		TSS:        200,
		TTS:        0,
		Promoter:   1300,
		Distance:   10000,
		Level:      LevelExon,
	}
}

// SetDistanceKb sets Distance from kilobases. Negative values are ignored.
func (c *Config) SetDistanceKb(kb int64) {
	if kb >= 0 {
		c.Distance = kb * 1000
	}
}

// MaxLookback is the furthest a gene can be from a region and still matter.
func (c *Config) MaxLookback() int64 {
	return max(c.Distance, c.TSS, c.TTS, c.Promoter)
}

// Validate checks the invariants the matcher relies on.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Rules) == 0 {
		errs = append(errs, errors.New("rules: at least one area is required"))
	}
	seen := make(map[Area]bool, len(c.Rules))
	for _, a := range c.Rules {
		if a < AreaTSS || a > AreaDownstream {
			errs = append(errs, fmt.Errorf("rules: unknown area %d", int(a)))
		} else if seen[a] {
			errs = append(errs, fmt.Errorf("rules: duplicate area %s", a))
		}
		seen[a] = true
	}
	if c.PercArea < 0 || c.PercArea > 100 {
		errs = append(errs, fmt.Errorf("area percentage %g must range between 0 and 100", c.PercArea))
	}
	if c.PercRegion < 0 || c.PercRegion > 100 {
		errs = append(errs, fmt.Errorf("region percentage %g must range between 0 and 100", c.PercRegion))
	}
	for _, w := range []struct {
		name string
		val  int64
	}{
		{"TSS distance", c.TSS},
		{"TTS distance", c.TTS},
		{"promoter distance", c.Promoter},
		{"distance", c.Distance},
	} {
		if w.val < 0 {
			errs = append(errs, fmt.Errorf("%s cannot be lower than 0 bp, got %d", w.name, w.val))
		}
	}
	return errors.Join(errs...)
}

// ParseRules parses a comma-separated priority list such as
// "TSS,1st_EXON,PROMOTER". Labels are case-sensitive and must be unique;
// a partial list is accepted.
func ParseRules(s string) ([]Area, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("rules: empty list")
	}

	var rules []Area
	seen := make(map[Area]bool)
	for _, tag := range strings.Split(s, ",") {
		a, err := ParseArea(strings.TrimSpace(tag))
		if err != nil {
			return nil, fmt.Errorf("rules: %w", err)
		}
		if seen[a] {
			return nil, fmt.Errorf("rules: duplicate area %s", a)
		}
		seen[a] = true
		rules = append(rules, a)
	}
	return rules, nil
}

// FormatRules renders rules back to their comma-separated form.
func FormatRules(rules []Area) string {
	names := make([]string, len(rules))
	for i, a := range rules {
		names[i] = a.String()
	}
	return strings.Join(names, ",")
}
