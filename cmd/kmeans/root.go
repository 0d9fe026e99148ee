package main

import (
	"errors"
	"fmt"
	"log/slog"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/kmeans"
	"github.com/hupe1980/kmeans/matfile"
	"github.com/hupe1980/kmeans/matrix"
	"github.com/hupe1980/kmeans/snapshot"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

type clusterFlags struct {
	cfgFile string

	input    string
	clusters int
	output   string
	centroid string

	algorithm     string
	maxIterations int
	labelsOnly    bool
	inPlace       bool

	allowEmptyClusters bool
	killEmptyClusters  bool

	refinedStart     bool
	percentage       float64
	samplings        int
	initialCentroids string

	modelIn          string
	modelOut         string
	modelCompression string

	seed    int64
	workers int
	verbose bool
}

func newRootCmd() *cobra.Command {
	flags := &clusterFlags{}

	cmd := &cobra.Command{
		Use:   "kmeans",
		Short: "K-means clustering over dense numeric datasets",
		Long: `kmeans partitions the rows of a dataset into k clusters by Lloyd
iterations with a selectable assignment backend. Every backend produces the
identical clustering; they differ only in how much distance work they skip.

Backends:
  naive               exact distance to every centroid
  elkan               triangle-inequality pruning, per-centroid lower bounds
  hamerly             triangle-inequality pruning, one lower bound per point
  dualtree            kd-tree accelerated assignment
  dualtree-covertree  cover-tree accelerated assignment`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCluster(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.cfgFile, "config", "", "config file (default $HOME/.kmeans.yaml)")

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "dataset file (.csv, .txt or .bin)")
	cmd.Flags().IntVarP(&flags.clusters, "clusters", "c", 0, "number of clusters")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file for the labeled dataset")
	cmd.Flags().StringVarP(&flags.centroid, "centroid", "C", "", "output file for the final centroids")

	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "naive", fmt.Sprintf("assignment backend %v", kmeans.Algorithms()))
	cmd.Flags().IntVar(&flags.maxIterations, "max-iterations", kmeans.DefaultMaxIterations, "iteration cap, 0 iterates until convergence")
	cmd.Flags().BoolVar(&flags.labelsOnly, "labels-only", false, "output only the label column")
	cmd.Flags().BoolVar(&flags.inPlace, "in-place", false, "rewrite the input file with the label column appended")

	cmd.Flags().BoolVar(&flags.allowEmptyClusters, "allow-empty-clusters", false, "keep empty clusters frozen in place")
	cmd.Flags().BoolVar(&flags.killEmptyClusters, "kill-empty-clusters", false, "delete empty clusters permanently")

	cmd.Flags().BoolVar(&flags.refinedStart, "refined-start", false, "seed centroids from repeated subsample clusterings")
	cmd.Flags().Float64Var(&flags.percentage, "percentage", 0.02, "refined start sample share in (0, 1]")
	cmd.Flags().IntVar(&flags.samplings, "samplings", 100, "refined start sample count")
	cmd.Flags().StringVar(&flags.initialCentroids, "initial-centroids", "", "file holding explicit starting centroids")

	cmd.Flags().StringVar(&flags.modelIn, "model-in", "", "warm-start from a saved model's centroids")
	cmd.Flags().StringVar(&flags.modelOut, "model-out", "", "save the trained model to this file")
	cmd.Flags().StringVar(&flags.modelCompression, "model-compression", "zstd", "model compression (none, lz4, zstd)")

	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "random seed, omit for a time-based seed")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "worker goroutines, 0 uses all CPUs")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "log per-iteration progress")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("kmeans v%s (%s)\n", version, commit)
		},
	})

	return cmd
}

// initConfig layers a viper config file and KMEANS_* environment variables
// under the command line flags: explicit flags always win.
func initConfig(cmd *cobra.Command, flags *clusterFlags) error {
	v := viper.New()

	if flags.cfgFile != "" {
		v.SetConfigFile(flags.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err == nil {
			v.AddConfigPath(home)
			v.SetConfigName(".kmeans")
		}
	}

	v.SetEnvPrefix("KMEANS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	// Explicit flags win; config and environment fill in the rest.
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("config key %s: %w", f.Name, err)
		}
	})
	return bindErr
}

func runCluster(cmd *cobra.Command, flags *clusterFlags) error {
	if flags.input == "" {
		return errors.New("no input dataset given (use --input)")
	}
	if flags.clusters <= 0 && flags.modelIn == "" {
		return errors.New("no cluster count given (use --clusters or --model-in)")
	}
	if flags.allowEmptyClusters && flags.killEmptyClusters {
		return errors.New("--allow-empty-clusters and --kill-empty-clusters are mutually exclusive")
	}

	algorithm, err := kmeans.ParseAlgorithm(flags.algorithm)
	if err != nil {
		return err
	}
	compression, err := snapshot.ParseCompression(flags.modelCompression)
	if err != nil {
		return err
	}

	data, err := matfile.Load(flags.input)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	clusters := flags.clusters
	var initial *matrix.Dense

	switch {
	case flags.modelIn != "":
		model, err := snapshot.Load(flags.modelIn)
		if err != nil {
			return fmt.Errorf("loading model: %w", err)
		}
		initial = model.Centroids
		if clusters <= 0 {
			clusters = model.Centroids.Rows()
		}
	case flags.initialCentroids != "":
		initial, err = matfile.Load(flags.initialCentroids)
		if err != nil {
			return fmt.Errorf("loading initial centroids: %w", err)
		}
	}

	policy := kmeans.PolicyDefault
	if flags.allowEmptyClusters {
		policy = kmeans.PolicyAllowEmpty
	} else if flags.killEmptyClusters {
		policy = kmeans.PolicyKillEmpty
	}

	opts := []kmeans.Option{
		kmeans.WithAlgorithm(algorithm),
		kmeans.WithMaxIterations(flags.maxIterations),
		kmeans.WithEmptyClusterPolicy(policy),
		kmeans.WithLabelsOnly(flags.labelsOnly),
		kmeans.WithInPlace(flags.inPlace),
		kmeans.WithWorkers(flags.workers),
	}
	if flags.refinedStart {
		opts = append(opts,
			kmeans.WithInitializer(kmeans.InitializerRefinedStart),
			kmeans.WithPercentage(flags.percentage),
			kmeans.WithSamplings(flags.samplings),
		)
	}
	if initial != nil {
		opts = append(opts, kmeans.WithInitialCentroids(initial))
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, kmeans.WithRandomSeed(flags.seed))
	}
	level := slog.LevelWarn
	if flags.verbose {
		level = slog.LevelDebug
	}
	opts = append(opts, kmeans.WithLogLevel(level))

	result, err := kmeans.Cluster(cmd.Context(), data, clusters, opts...)
	if err != nil {
		return err
	}

	if flags.inPlace {
		if err := matfile.Save(flags.input, data); err != nil {
			return fmt.Errorf("rewriting dataset: %w", err)
		}
	}
	if flags.output != "" {
		if err := matfile.Save(flags.output, result.Output); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if flags.centroid != "" {
		if err := matfile.Save(flags.centroid, result.Centroids); err != nil {
			return fmt.Errorf("writing centroids: %w", err)
		}
	}
	if flags.modelOut != "" {
		model := &snapshot.Model{
			Centroids:     result.Centroids,
			OriginalIndex: result.OriginalIndex,
			Iterations:    result.Iterations,
			Distortion:    result.Distortion,
			Seed:          result.Seed,
		}
		logger := kmeans.NewTextLogger(level).WithClusters(result.Clusters)
		err := snapshot.Save(flags.modelOut, model, snapshot.WithCompression(compression))
		logger.LogSnapshot(cmd.Context(), flags.modelOut, err)
		if err != nil {
			return fmt.Errorf("writing model: %w", err)
		}
	}

	cmd.Printf("%s after %d iterations, %d clusters, distortion %g\n",
		result.Termination, result.Iterations, result.Clusters, result.Distortion)

	return nil
}
