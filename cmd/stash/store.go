package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/discochess/stash"
)

var storeCmd = &cobra.Command{
	Use:   "store [VALUE]",
	Short: "Store a value under a new random key",
	Long: `Store a value and print the generated key. The backend is not flushed,
so earlier values and call history are kept.

Examples:
  stash store hello
  stash store --type int 42
  stash store --type float 3.5`,
	Args: cobra.ExactArgs(1),
	RunE: runStore,
}

var getCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Read the value stored under a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

var (
	storeType string
	getAs     string
)

func init() {
	storeCmd.Flags().StringVarP(&storeType, "type", "t", "string", "value type (string, bytes, int or float)")
	getCmd.Flags().StringVar(&getAs, "as", "string", "conversion to apply (string, bytes, int or float)")
	rootCmd.AddCommand(storeCmd, getCmd)
}

func parseValue(raw, typ string) (any, error) {
	switch typ {
	case "string":
		return raw, nil
	case "bytes":
		return []byte(raw), nil
	case "int":
		return strconv.Atoi(raw)
	case "float":
		return strconv.ParseFloat(raw, 64)
	default:
		return nil, fmt.Errorf("unknown type %q", typ)
	}
}

func runStore(cmd *cobra.Command, args []string) error {
	value, err := parseValue(args[0], storeType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	cache, stop, err := openCache(ctx, true)
	if err != nil {
		return err
	}
	defer stop()

	key, err := cache.Store(ctx, value)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cache, stop, err := openCache(ctx, true)
	if err != nil {
		return err
	}
	defer stop()

	key := args[0]
	var value any
	switch getAs {
	case "string":
		value, err = stash.Get(ctx, cache, key, stash.AsString)
	case "bytes":
		value, err = stash.Get[[]byte](ctx, cache, key, nil)
	case "int":
		value, err = stash.Get(ctx, cache, key, stash.AsInt)
	case "float":
		value, err = stash.Get(ctx, cache, key, stash.AsFloat)
	default:
		return fmt.Errorf("unknown conversion %q", getAs)
	}
	if err != nil {
		return err
	}

	if b, ok := value.([]byte); ok {
		fmt.Printf("%q\n", b)
		return nil
	}
	fmt.Println(value)
	return nil
}
