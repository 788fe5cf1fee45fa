package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"regulonet/adapters/excel"
	"regulonet/adapters/flatfile"
	"regulonet/adapters/postgres"
	"regulonet/app"
	"regulonet/domain/core"
	"regulonet/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "regulonet",
		Short: "Tissue-specific regulon inference and per-cell activity scoring",
	}

	rootCmd.AddCommand(newRunCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		tissueSpecs []string
		coexprPath  string
		genesPath   string
		tfsPath     string
		exprPath    string
		summaryPath string

		quantile   float64
		minSize    int
		cutoff     float64
		maxWorkers int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full evidence-fusion and scoring pipeline",
		Long: `Run the pipeline over one or more tissues.

Each --tissue takes "name=footprints.tsv,rep1.bed,rep2.bed". Results are
persisted to postgres when DATABASE_URL is set (a .env file is honored) and
to a summary workbook when --summary is given.

Example:
  regulonet run \
    --tissue liver=liver_fp.tsv,liver_r1.bed,liver_r2.bed \
    --tissue kidney=kidney_fp.tsv,kidney_r1.bed,kidney_r2.bed \
    --coexpr modules.tsv --genes symbols.txt --tfs tf_list.txt \
    --expression matrix.tsv --summary run.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tissues, err := parseTissueSpecs(tissueSpecs)
			if err != nil {
				return err
			}
			store := flatfile.NewStore(tissues, coexprPath, genesPath, tfsPath, exprPath)

			var sinks []ports.ResultsSink
			if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
				db, err := postgres.Connect(dsn)
				if err != nil {
					return err
				}
				defer db.Close()
				repo := postgres.NewResultsRepository(db)
				if err := repo.EnsureSchema(cmd.Context()); err != nil {
					return err
				}
				sinks = append(sinks, repo)
			}
			if summaryPath != "" {
				sinks = append(sinks, excel.NewSummaryWriter(summaryPath))
			}

			cfg := app.DefaultConfig()
			cfg.QuantileProb = quantile
			cfg.MinRegulonSize = minSize
			cfg.RankCutoffFraction = cutoff
			if maxWorkers > 0 {
				cfg.MaxWorkers = maxWorkers
			}

			inputs, err := app.LoadInputs(cmd.Context(), store.Tissues(), store, store, store, store)
			if err != nil {
				return err
			}

			service := app.NewPipelineService(sinks...)
			result, err := service.Run(cmd.Context(), inputs, cfg)
			if err != nil {
				return err
			}

			for _, report := range result.Reports {
				fmt.Printf("%-16s %-10s confirmed=%d tfs=%d targets=%d scored=%d\n",
					report.Tissue, report.Status,
					report.ConfirmedInteractions, report.DistinctTFs,
					report.DistinctTargets, report.ScoredRegulons)
			}
			fmt.Printf("run %s: %d/%d tissues completed, mean activity %.4f\n",
				result.RunID, result.Summary.Completed, result.Summary.Tissues,
				result.Summary.MeanActivity)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&tissueSpecs, "tissue", nil, "tissue spec: name=footprints.tsv,rep1.bed,rep2.bed (repeatable)")
	cmd.Flags().StringVar(&coexprPath, "coexpr", "", "co-expression importance table (TSV)")
	cmd.Flags().StringVar(&genesPath, "genes", "", "reference gene symbol list, one per line")
	cmd.Flags().StringVar(&tfsPath, "tfs", "", "curated transcription factor list, one per line")
	cmd.Flags().StringVar(&exprPath, "expression", "", "cell x gene expression matrix (TSV)")
	cmd.Flags().StringVar(&summaryPath, "summary", "", "optional summary workbook output (.xlsx)")
	cmd.Flags().Float64Var(&quantile, "quantile", 0.50, "importance quantile for module pruning")
	cmd.Flags().IntVar(&minSize, "min-regulon-size", 20, "minimum target set size for scoring")
	cmd.Flags().Float64Var(&cutoff, "rank-cutoff", 0.05, "recovery-curve rank cutoff fraction")
	cmd.Flags().IntVar(&maxWorkers, "workers", 0, "worker pool size (0 = number of CPUs)")

	for _, flag := range []string{"tissue", "coexpr", "genes", "tfs", "expression"} {
		cmd.MarkFlagRequired(flag)
	}
	return cmd
}

func parseTissueSpecs(specs []string) (map[core.Tissue]flatfile.TissuePaths, error) {
	tissues := make(map[core.Tissue]flatfile.TissuePaths, len(specs))
	for _, spec := range specs {
		name, files, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("bad tissue spec %q, want name=footprints,rep1,rep2", spec)
		}
		tissue, err := core.ParseTissue(name)
		if err != nil {
			return nil, err
		}
		parts := strings.Split(files, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("tissue %s needs footprints,rep1,rep2 (got %d paths)", name, len(parts))
		}
		tissues[tissue] = flatfile.TissuePaths{
			Footprints: parts[0],
			Replicate1: parts[1],
			Replicate2: parts[2],
		}
	}
	return tissues, nil
}

func init() {
	// A .env file beside the binary supplies DATABASE_URL in development.
	if err := godotenv.Load(); err == nil {
		log.Printf("[regulonet] loaded environment from .env")
	}
}
