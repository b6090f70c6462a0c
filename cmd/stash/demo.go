package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/stash"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Store sample values, read them back and replay the history",
	Long: `Flush the backend, store a string, bytes, an integer and a float, read
each back with its converter and print the call history.`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cache, stop, err := openCache(ctx, false)
	if err != nil {
		return err
	}
	defer stop()

	samples := []struct {
		value any
		read  func(key string) (any, error)
	}{
		{"foo", func(key string) (any, error) { return cache.GetString(ctx, key) }},
		{[]byte("bar"), func(key string) (any, error) { return cache.Get(ctx, key) }},
		{123, func(key string) (any, error) { return cache.GetInt(ctx, key) }},
		{3.5, func(key string) (any, error) { return cache.GetFloat(ctx, key) }},
	}

	for _, s := range samples {
		key, err := cache.Store(ctx, s.value)
		if err != nil {
			return fmt.Errorf("storing %v: %w", s.value, err)
		}
		got, err := s.read(key)
		if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		fmt.Printf("%s -> %v\n", key, got)
	}

	fmt.Println()
	return cache.Replay(ctx, os.Stdout, stash.StoreOp)
}
