// Command relbufctl is a small demo driver over the bufferpool core, in
// the spirit of teacher's src/cmd/main.go. It loads pool configuration
// with viper and wires a cobra command tree around init/drop/stat
// operations, rather than main.go's single hand-rolled happy path.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avadhanam/relbuf/src/bufferpool"
	"github.com/avadhanam/relbuf/src/metrics"
	"github.com/avadhanam/relbuf/src/pagefile"
	"github.com/avadhanam/relbuf/src/recordmgr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relbufctl",
		Short: "Drive a relbuf page file and buffer pool from the command line.",
	}
	root.PersistentFlags().String("file", "", "page file path")
	root.PersistentFlags().Int("frames", 8, "buffer pool frame count")
	root.PersistentFlags().String("strategy", "fifo", "replacement strategy: fifo|lru")
	root.PersistentFlags().String("listen", "", "address to serve Prometheus /metrics on, empty to disable")
	_ = viper.BindPFlags(root.PersistentFlags())
	viper.SetEnvPrefix("RELBUF")
	viper.AutomaticEnv()

	root.AddCommand(newInitCmd(), newStatCmd(), newDropCmd(), newTableCmd())
	return root
}

func newTableCmd() *cobra.Command {
	table := &cobra.Command{
		Use:   "table",
		Short: "Exercise the record-manager skeleton over a table's page file.",
	}
	table.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Create a table's page file and allocate its first page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return recordmgr.CreateTable(viper.GetString("file"))
		},
	})
	table.AddCommand(&cobra.Command{
		Use:   "insert",
		Short: "Open a table, insert one record, report the tuple count.",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := recordmgr.OpenTable(viper.GetString("file"))
			if err != nil {
				return err
			}
			defer t.CloseTable()
			t.InsertRecord()
			fmt.Printf("tuples: %d\n", t.NumTuples())
			return nil
		},
	})
	return table
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new, empty page file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pagefile.Create(viper.GetString("file"))
		},
	}
}

func newDropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop",
		Short: "Delete a page file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pagefile.Destroy(viper.GetString("file"))
		},
	}
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Open the pool, pin page 0, print introspection, and tear down.",
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy := bufferpool.FIFO
			if viper.GetString("strategy") == "lru" {
				strategy = bufferpool.LRU
			}

			opts := []bufferpool.Option{
				bufferpool.WithLogger(zerolog.New(os.Stderr).With().Timestamp().Logger()),
			}

			if addr := viper.GetString("listen"); addr != "" {
				reg := prometheus.NewRegistry()
				collector := metrics.NewCollector(reg, viper.GetString("file"))
				opts = append(opts, bufferpool.WithMetrics(collector))
				go func() {
					http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
					_ = http.ListenAndServe(addr, nil)
				}()
			}

			pool, err := bufferpool.Open(viper.GetString("file"), viper.GetInt("frames"), strategy, opts...)
			if err != nil {
				return err
			}
			defer pool.Close()

			h, err := pool.Pin(0)
			if err != nil {
				return err
			}
			defer pool.Unpin(h)

			fmt.Printf("frames: %v\n", pool.FrameContents())
			fmt.Printf("dirty:  %v\n", pool.DirtyFlags())
			fmt.Printf("pins:   %v\n", pool.FixCounts())
			fmt.Printf("readIO: %d writeIO: %d\n", pool.ReadIO(), pool.WriteIO())
			return nil
		},
	}
}
