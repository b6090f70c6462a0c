package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/discochess/stash/internal/docstore"
	"github.com/discochess/stash/internal/docstore/mongodoc"
)

var listCmd = &cobra.Command{
	Use:   "list DATABASE COLLECTION",
	Short: "List every document in a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runList,
}

var logStatsCmd = &cobra.Command{
	Use:   "logstats",
	Short: "Summarize nginx request logs",
	Long: `Print the number of logs, the count per HTTP method and the number of
GET /status checks in the logs.nginx collection.`,
	Args: cobra.NoArgs,
	RunE: runLogStats,
}

var topStudentsCmd = &cobra.Command{
	Use:   "top-students DATABASE COLLECTION",
	Short: "List students sorted by average topic score",
	Args:  cobra.ExactArgs(2),
	RunE:  runTopStudents,
}

var (
	logsDB         string
	logsCollection string
	mongoTimeout   time.Duration
)

func init() {
	logStatsCmd.Flags().StringVar(&logsDB, "db", "logs", "database holding the logs")
	logStatsCmd.Flags().StringVar(&logsCollection, "collection", "nginx", "collection holding the logs")
	rootCmd.PersistentFlags().DurationVar(&mongoTimeout, "mongo-timeout", 10*time.Second, "timeout for MongoDB commands")
	rootCmd.AddCommand(listCmd, logStatsCmd, topStudentsCmd)
}

// withCollection connects to a collection and runs fn against it.
func withCollection(database, collection string, fn func(ctx context.Context, c docstore.Collection) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	coll, err := mongodoc.Connect(ctx, mongoURI, database, collection)
	if err != nil {
		return err
	}
	defer coll.Close(context.Background())

	return fn(ctx, coll)
}

func runList(cmd *cobra.Command, args []string) error {
	return withCollection(args[0], args[1], func(ctx context.Context, c docstore.Collection) error {
		docs, err := docstore.ListAll(ctx, c)
		if err != nil {
			return err
		}
		return printDocs(docs)
	})
}

func runLogStats(cmd *cobra.Command, args []string) error {
	return withCollection(logsDB, logsCollection, func(ctx context.Context, c docstore.Collection) error {
		st, err := docstore.CollectLogStats(ctx, c)
		if err != nil {
			return err
		}
		_, err = st.WriteTo(os.Stdout)
		return err
	})
}

func runTopStudents(cmd *cobra.Command, args []string) error {
	return withCollection(args[0], args[1], func(ctx context.Context, c docstore.Collection) error {
		docs, err := docstore.TopStudents(ctx, c)
		if err != nil {
			return err
		}
		return printDocs(docs)
	})
}

// printDocs writes one relaxed extended JSON document per line.
func printDocs(docs []bson.M) error {
	for _, doc := range docs {
		out, err := bson.MarshalExtJSON(doc, false, false)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		fmt.Println(string(out))
	}
	return nil
}
