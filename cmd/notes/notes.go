package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/notesapp/notes/pkg/domain"
)

func (c *cli) listCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authSvc, notesSvc := c.services()
			if err := notesSvc.Fetch(context.Background(), authSvc.Token()); err != nil {
				return sessionErr(err)
			}
			list := notesSvc.Store().State().Notes
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(list)
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No notes yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, n := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", n.ID, n.Title, preview(n.Content, 50))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		Long:  `Create a note. Pass --content - to read the body from stdin.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readContent(cmd.InOrStdin(), content)
			if err != nil {
				return err
			}
			authSvc, notesSvc := c.services()
			in := domain.NoteInput{Title: title, Content: body}
			if err := notesSvc.Create(context.Background(), authSvc.Token(), in); err != nil {
				return sessionErr(err)
			}
			created := notesSvc.Store().State().Notes[0]
			fmt.Fprintf(cmd.OutOrStdout(), "Note created: %s\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&content, "content", "", "note body, or - for stdin")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Update a note's title and/or content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
				return fmt.Errorf("nothing to change: pass --title and/or --content")
			}
			body, err := readContent(cmd.InOrStdin(), content)
			if err != nil {
				return err
			}

			authSvc, notesSvc := c.services()
			ctx, token := context.Background(), authSvc.Token()
			if err := notesSvc.Fetch(ctx, token); err != nil {
				return sessionErr(err)
			}
			var current *domain.Note
			for _, n := range notesSvc.Store().State().Notes {
				if n.ID == id {
					current = &n
					break
				}
			}
			if current == nil {
				return fmt.Errorf("note %s not found", id)
			}

			in := domain.NoteInput{Title: current.Title, Content: current.Content}
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			if cmd.Flags().Changed("content") {
				in.Content = body
			}
			notesSvc.Edit(*current)
			if err := notesSvc.Submit(ctx, token, in); err != nil {
				return sessionErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note updated: %s\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&content, "content", "", "new body, or - for stdin")
	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [id]",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			authSvc, notesSvc := c.services()
			if err := notesSvc.Delete(context.Background(), authSvc.Token(), id); err != nil {
				return sessionErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note deleted: %s\n", id)
			return nil
		},
	}
}

// readContent returns flag, or all of in when flag is "-".
func readContent(in io.Reader, flag string) (string, error) {
	if flag != "-" {
		return flag, nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// preview flattens content to one line of at most n runes.
func preview(content string, n int) string {
	s := strings.Join(strings.Fields(content), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
