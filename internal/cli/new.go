package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/storage"
)

var newCmd = &cobra.Command{
	Use:   "new [flags] LAYERS...",
	Short: "Create a fresh model file",
	Long: `Create a model with the given topology and freshly initialized weights.

LAYERS is the list of layer widths, either dash-joined or space-separated.
The first width is the input layer (10 for the queue feature vector), the
last is the output layer (1 for the wait prediction).

With --dir the filename is derived from the topology, so the same topology
always targets the same file.`,
	Example: `  2b2q new --dir models 10-6-2-4-1
  2b2q new --path models/experiment.json 10 8 1
  2b2q new --dir models --force 10-6-2-4-1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNew,
}

var (
	newPath  string
	newDir   string
	newForce bool
)

func init() {
	newCmd.Flags().StringVar(&newPath, "path", "", "explicit model file path")
	newCmd.Flags().StringVar(&newDir, "dir", "", "target directory, filename derived from topology")
	newCmd.Flags().BoolVar(&newForce, "force", false, "overwrite an existing model file")
	newCmd.MarkFlagsMutuallyExclusive("path", "dir")
	rootCmd.AddCommand(newCmd)
}

func runNew(cmd *cobra.Command, args []string) error {
	topology, err := parseLayers(args)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var target string
	switch {
	case newPath != "":
		target = newPath
	case newDir != "":
		target = storage.DerivedPath(newDir, topology)
	default:
		return fmt.Errorf("%w: either --path or --dir is required", errUsage)
	}

	model, err := storage.Create(topology, target, newForce)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), model.Path)
	return nil
}

// parseLayers reads a topology from the command line: positive integers,
// space-separated, dash-joined, or a mix ("10-6-2-4-1", "10 6 2 4 1").
func parseLayers(args []string) ([]int, error) {
	var topology []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, "-") {
			width, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("bad layer width %q", part)
			}
			if width < 1 {
				return nil, fmt.Errorf("layer width must be positive, got %d", width)
			}
			topology = append(topology, width)
		}
	}
	if len(topology) < 2 {
		return nil, fmt.Errorf("topology needs at least 2 layers, got %d", len(topology))
	}
	return topology, nil
}
