package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/stash"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Print the recorded call history of an operation",
	Args:  cobra.NoArgs,
	RunE:  runReplay,
}

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Print how many times an operation was called",
	Args:  cobra.NoArgs,
	RunE:  runCalls,
}

var opName string

func init() {
	for _, c := range []*cobra.Command{replayCmd, callsCmd} {
		c.Flags().StringVar(&opName, "op", stash.StoreOp, "instrumented operation name")
	}
	rootCmd.AddCommand(replayCmd, callsCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cache, stop, err := openCache(ctx, true)
	if err != nil {
		return err
	}
	defer stop()

	return cache.Replay(ctx, os.Stdout, opName)
}

func runCalls(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cache, stop, err := openCache(ctx, true)
	if err != nil {
		return err
	}
	defer stop()

	n, err := cache.Calls(ctx, opName)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}
