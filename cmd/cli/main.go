package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"librarian/internal/book"
	"librarian/internal/client"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	url        string
	jsonOutput bool
	timeout    time.Duration
}

func (o *options) client() *client.Client {
	return client.NewClient(o.url, client.WithRateLimit(5))
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "librarian",
		Short:        "Manage the library catalog from the command line",
		SilenceUsage: true,
	}

	defaultURL := os.Getenv("LIBRARIAN_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&opts.url, "url", defaultURL, "Catalog API base URL (env LIBRARIAN_URL)")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall request timeout")

	root.AddCommand(
		newListCmd(opts),
		newAddCmd(opts),
		newEditCmd(opts),
		newRmCmd(opts),
	)
	return root
}

func newListCmd(opts *options) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, optionally filtered by title or author",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			books, err := opts.client().List(ctx)
			if err != nil {
				return err
			}
			books = client.Filter(books, search)

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), books)
			}
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books found")
				return nil
			}
			return writeTable(cmd.OutOrStdout(), books)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive match on title or author")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	var (
		title       string
		author      string
		unavailable bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			created, err := opts.client().Create(ctx, client.NewBook{
				Title:     title,
				Author:    author,
				Available: !unavailable,
			})
			if err != nil {
				return err
			}
			return printBook(cmd.OutOrStdout(), opts, "Added", created)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Book title")
	cmd.Flags().StringVar(&author, "author", "", "Book author")
	cmd.Flags().BoolVar(&unavailable, "unavailable", false, "Mark the book as checked out")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newEditCmd(opts *options) *cobra.Command {
	var (
		title     string
		author    string
		available bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title, author or availability of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			patch := client.Patch{ID: id}
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("author") {
				patch.Author = &author
			}
			if flags.Changed("available") {
				patch.Available = &available
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			updated, err := opts.client().Update(ctx, patch)
			if err != nil {
				return err
			}
			return printBook(cmd.OutOrStdout(), opts, "Updated", updated)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&author, "author", "", "New author")
	cmd.Flags().BoolVar(&available, "available", true, "New availability")
	return cmd
}

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Remove a book from the catalog",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := opts.client().Delete(ctx, id); err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"deleted": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d\n", id)
			return nil
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", s)
	}
	return id, nil
}

func printBook(w io.Writer, opts *options, verb string, b book.Book) error {
	if opts.jsonOutput {
		return writeJSON(w, b)
	}
	fmt.Fprintf(w, "%s book %d: %s by %s (%s)\n", verb, b.ID, b.Title, b.Author, availability(b))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, books []book.Book) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tSTATUS")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, availability(b))
	}
	return tw.Flush()
}

func availability(b book.Book) string {
	if b.Available {
		return "available"
	}
	return "checked out"
}
