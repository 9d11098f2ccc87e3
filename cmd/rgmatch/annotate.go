package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/rgmatch/internal/annotate"
	"github.com/inodb/rgmatch/internal/bed"
	"github.com/inodb/rgmatch/internal/cache"
	"github.com/inodb/rgmatch/internal/duckdb"
	"github.com/inodb/rgmatch/internal/output"
)

// annotateOptions holds the resolved settings of one annotate run.
type annotateOptions struct {
	gtf           string
	bed           string
	output        string
	report        string
	distanceKb    int64
	tss           int64
	tts           int64
	promoter      int64
	percArea      float64
	percRegion    float64
	rules         string
	geneTag       string
	transcriptTag string
	workers       int
	cacheDir      string
	summary       bool
}

func newAnnotateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Match BED regions to the genes of a GTF file",
		Long: `Match every region of a BED file to the transcripts around it and report
the area each region falls in, filtered by the priority rules and the
area and region percentage thresholds.`,
		Example: `  rgmatch annotate -g genes.gtf -b peaks.bed -o matches.txt
  rgmatch annotate -g genes.gtf.gz -b peaks.bed -r gene -q 20
  rgmatch annotate -g genes.gtf -b peaks.bed -R INTRON,TSS,GENE_BODY --summary
  cat peaks.bed | rgmatch annotate -g genes.gtf -b -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(root.verbose)
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			return runAnnotate(annotateOptionsFromViper(), cmd.OutOrStdout(), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringP("gtf", "g", "", "GTF annotation file, plain, gzip or BGZF (required)")
	flags.StringP("bed", "b", "", "BED region file, plain, gzip or BGZF; '-' reads stdin (required)")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("report", "r", "exon", "Report level: exon, transcript or gene")
	flags.Int64P("distance", "q", 10, "Maximum distance in kb to report associations")
	flags.Int64P("tss", "t", 200, "TSS region distance in bp")
	flags.Int64P("tts", "s", 0, "TTS region distance in bp")
	flags.Int64P("promoter", "p", 1300, "Promoter region distance in bp")
	flags.Float64P("perc_area", "v", 90, "Percentage of the area overlap threshold (0-100)")
	flags.Float64P("perc_region", "w", 50, "Percentage of the region overlap threshold (0-100)")
	flags.StringP("rules", "R", annotate.FormatRules(annotate.AllAreas), "Area priority rules, comma-separated; a partial list is accepted and unlisted areas never outrank listed ones")
	flags.StringP("gene", "G", cache.DefaultGeneIDTag, "GTF attribute holding the gene id")
	flags.StringP("transcript", "T", cache.DefaultTranscriptIDTag, "GTF attribute holding the transcript id")
	flags.Int("workers", 0, "Chromosomes matched in parallel (0 = all CPUs)")
	flags.String("cache-dir", "", "Directory for the parsed GTF cache (disabled when empty)")
	flags.Bool("summary", false, "Log per-area row counts when done")

	flags.VisitAll(func(f *pflag.Flag) {
		viper.BindPFlag(viperKey(f.Name), f) //nolint:errcheck
	})

	return cmd
}

// viperKey maps a flag name to its key under the annotate namespace.
func viperKey(flag string) string {
	return "annotate." + flag
}

func annotateOptionsFromViper() annotateOptions {
	return annotateOptions{
		gtf:           viper.GetString(viperKey("gtf")),
		bed:           viper.GetString(viperKey("bed")),
		output:        viper.GetString(viperKey("output")),
		report:        viper.GetString(viperKey("report")),
		distanceKb:    viper.GetInt64(viperKey("distance")),
		tss:           viper.GetInt64(viperKey("tss")),
		tts:           viper.GetInt64(viperKey("tts")),
		promoter:      viper.GetInt64(viperKey("promoter")),
		percArea:      viper.GetFloat64(viperKey("perc_area")),
		percRegion:    viper.GetFloat64(viperKey("perc_region")),
		rules:         viper.GetString(viperKey("rules")),
		geneTag:       viper.GetString(viperKey("gene")),
		transcriptTag: viper.GetString(viperKey("transcript")),
		workers:       viper.GetInt(viperKey("workers")),
		cacheDir:      viper.GetString(viperKey("cache-dir")),
		summary:       viper.GetBool(viperKey("summary")),
	}
}

// buildConfig turns the options into a validated matcher configuration.
// A negative distance keeps the default, as the classic tool does.
func buildConfig(o annotateOptions) (*annotate.Config, error) {
	cfg := annotate.DefaultConfig()

	level, err := annotate.ParseReportLevel(o.report)
	if err != nil {
		return nil, err
	}
	cfg.Level = level

	rules, err := annotate.ParseRules(o.rules)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	cfg.SetDistanceKb(o.distanceKb)
	cfg.TSS = o.tss
	cfg.TTS = o.tts
	cfg.Promoter = o.promoter
	cfg.PercArea = o.percArea
	cfg.PercRegion = o.percRegion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createOutput opens the --output file.
var createOutput = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func runAnnotate(o annotateOptions, stdout io.Writer, logger *zap.Logger) error {
	if o.gtf == "" {
		return fmt.Errorf("--gtf is required")
	}
	if o.bed == "" {
		return fmt.Errorf("--bed is required")
	}

	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}

	genes, err := loadGenes(o, logger)
	if err != nil {
		return err
	}

	parser, err := bed.NewParser(o.bed)
	if err != nil {
		return fmt.Errorf("opening BED file: %w", err)
	}
	defer parser.Close()

	logger.Info("parsing BED file", zap.String("path", o.bed))
	regions, err := bed.ReadAll(parser)
	if err != nil {
		return fmt.Errorf("reading BED file: %w", err)
	}
	logger.Info("parsed BED file",
		zap.Int("regions", regions.Count()),
		zap.Int("chromosomes", len(regions.Chromosomes())),
		zap.Int("meta_columns", regions.NumMetaColumns))

	out := stdout
	var outFile io.WriteCloser
	if o.output != "" {
		outFile, err = createOutput(o.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer func() {
			if outFile != nil {
				outFile.Close()
			}
		}()
		out = outFile
	}

	var writer annotate.CandidateWriter = output.NewTabWriter(out, regions.NumMetaColumns)
	if err := writer.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var store *duckdb.Store
	if o.summary {
		store, err = duckdb.Open()
		if err != nil {
			return err
		}
		defer store.Close()
		writer = output.NewMultiWriter(writer, duckdb.NewCollector(store))
	}

	ann := annotate.NewAnnotator(genes, cfg)
	ann.SetLogger(logger)
	if err := ann.AnnotateAll(regions, o.workers, writer); err != nil {
		return err
	}

	if outFile != nil {
		f := outFile
		outFile = nil
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
	}

	if store != nil {
		if err := logSummary(store, logger); err != nil {
			return err
		}
	}
	return nil
}

// loadGenes parses the GTF file, going through the gob cache when a cache
// directory is configured.
func loadGenes(o annotateOptions, logger *zap.Logger) (*cache.Cache, error) {
	loader := cache.NewGTFLoader(o.gtf)
	loader.SetIDTags(o.geneTag, o.transcriptTag)

	if o.cacheDir == "" {
		return parseGTF(loader, o.gtf, logger)
	}

	fp, err := cache.StatFile(o.gtf)
	if err != nil {
		return nil, fmt.Errorf("GTF file not found: %w", err)
	}

	gc := cache.NewGeneCache(o.cacheDir)
	if gc.Valid(fp, o.geneTag, o.transcriptTag) {
		c := cache.New()
		err := gc.Load(c)
		if err == nil {
			logger.Info("loaded genes from cache",
				zap.String("dir", o.cacheDir),
				zap.Int("genes", c.GeneCount()),
				zap.Int("transcripts", c.TranscriptCount()))
			return c, nil
		}
		logger.Warn("gene cache unreadable, parsing GTF", zap.Error(err))
	} else {
		logger.Debug("gene cache miss", zap.String("dir", o.cacheDir))
	}

	c, err := parseGTF(loader, o.gtf, logger)
	if err != nil {
		return nil, err
	}
	if err := gc.Write(c, fp, o.geneTag, o.transcriptTag); err != nil {
		logger.Warn("could not write gene cache", zap.Error(err))
	}
	return c, nil
}

func parseGTF(loader *cache.GTFLoader, path string, logger *zap.Logger) (*cache.Cache, error) {
	logger.Info("parsing GTF file", zap.String("path", path))
	c := cache.New()
	if err := loader.Load(c); err != nil {
		return nil, err
	}
	logger.Info("parsed GTF file",
		zap.Int("genes", c.GeneCount()),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("chromosomes", len(c.Chromosomes())))
	return c, nil
}

func logSummary(store *duckdb.Store, logger *zap.Logger) error {
	total, err := store.Count()
	if err != nil {
		return err
	}
	summary, err := store.AreaSummary()
	if err != nil {
		return err
	}
	logger.Info("summary", zap.Int64("rows", total), zap.Int("areas", len(summary)))
	for _, s := range summary {
		logger.Info("area summary",
			zap.String("area", s.Area),
			zap.Int64("rows", s.Rows),
			zap.Int64("regions", s.Regions),
			zap.Int64("genes", s.Genes))
	}
	return nil
}
