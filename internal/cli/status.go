package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/haskel/2b2q/internal/server"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running trainer's status server",
	Long:  `Fetch the live snapshot from a training process started with --listen.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var (
	statusAddrFlag string
	statusJSON     bool
)

func init() {
	statusCmd.Flags().StringVar(&statusAddrFlag, "addr", "", "status server address")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the raw JSON response")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	addr := statusAddrFlag
	if addr == "" {
		addr = cfg.Server.Addr
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/status", addr))
	if err != nil {
		return fmt.Errorf("failed to reach trainer at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("trainer returned status %d: %s", resp.StatusCode, data)
	}

	out := cmd.OutOrStdout()
	if statusJSON {
		fmt.Fprintln(out, string(data))
		return nil
	}

	var status server.StatusResponse
	if err := json.Unmarshal(data, &status); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Fprintf(out, "model:   %s\n", status.Meta.ModelPath)
	fmt.Fprintf(out, "data:    %s (%d samples)\n", status.Meta.DataDir, status.Meta.Samples)
	fmt.Fprintf(out, "started: %s\n", status.Meta.StartedAt.Format(time.DateTime))
	if status.Snapshot == nil {
		fmt.Fprintln(out, "no progress reported yet")
		return nil
	}
	snap := status.Snapshot
	fmt.Fprintf(out, "state:   %s (iteration %d, epoch %d, batch %d)\n",
		snap.State, snap.Iteration, snap.Epoch, snap.Batch)
	fmt.Fprintf(out, "error:   %.6f (best %.6f)\n", snap.Err, snap.BestErr)
	fmt.Fprintf(out, "elapsed: %s, %d checkpoint(s)\n", snap.Elapsed().Truncate(time.Second), snap.Checkpoints)
	if snap.RSSBytes > 0 {
		fmt.Fprintf(out, "process: %.1f%% cpu, %.1f MB rss\n", snap.CPUPercent, float64(snap.RSSBytes)/1024/1024)
	}
	return nil
}
