package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/go-news-formatter/internal/clipboard"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/pkg/log"
)

// errNotConfirmed — clear без --yes.
var errNotConfirmed = errors.New("refusing to clear all articles without --yes")

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "news-formatter",
		Short: "Format news articles and export them by category",
		Long: `news-formatter keeps a list of news articles grouped by category,
renders each one into the -PAGE-/-END- wire format and exports a whole
category as a single block of text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newAddCmd(&configPath),
		newEditCmd(&configPath),
		newShowCmd(&configPath),
		newDeleteCmd(&configPath),
		newMoveCmd(&configPath),
		newClearCmd(&configPath),
		newListCmd(&configPath),
		newCategoriesCmd(&configPath),
		newExportCmd(&configPath),
		newRatesCmd(&configPath),
	)

	return root
}

// runWithApp открывает app, выполняет одно действие и закрывает хранилище.
func runWithApp(cmd *cobra.Command, configPath string, fn func(ctx context.Context, a *app) error) error {
	a, ctx, err := openApp(cmd.Context(), configPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx = log.With(ctx, "command", cmd.Name())

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Service+a.cfg.Rates.Timeout)
	defer cancel()

	return fn(ctx, a)
}

// draftFlags — поля черновика для add/edit.
type draftFlags struct {
	category, title, city, source, body, bodyFile string
}

func (f *draftFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.category, "category", "c", "", "article category")
	fl.StringVarP(&f.title, "title", "t", "", "article title")
	fl.StringVar(&f.city, "city", "", "source city (upper-cased)")
	fl.StringVarP(&f.source, "source", "s", "", "news agency: Unian, BNS or Apsny (default Unian)")
	fl.StringVarP(&f.body, "body", "b", "", "article text")
	fl.StringVar(&f.bodyFile, "body-file", "", "read article text from file ('-' for stdin)")
	cmd.MarkFlagsMutuallyExclusive("body", "body-file")
}

// apply переносит заданные флаги в черновик; незаданные поля не трогает.
func (f *draftFlags) apply(cmd *cobra.Command, d *models.Draft) error {
	fl := cmd.Flags()

	if fl.Changed("category") {
		d.Category = f.category
	}
	if fl.Changed("title") {
		d.Title = f.title
	}
	if fl.Changed("city") {
		d.City = f.city
	}
	if fl.Changed("source") {
		d.Source = f.source
	}
	if fl.Changed("body") {
		d.Body = f.body
	}

	if fl.Changed("body-file") {
		var (
			b   []byte
			err error
		)
		if f.bodyFile == "-" {
			b, err = io.ReadAll(cmd.InOrStdin())
		} else {
			b, err = os.ReadFile(f.bodyFile)
		}
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		d.Body = string(b)
	}

	return nil
}

func newAddCmd(configPath *string) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Format and save a new article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var d models.Draft
			if err := f.apply(cmd, &d); err != nil {
				return err
			}

			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				saved, err := a.svc.SaveArticle(ctx, d)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderArticle(saved.Index, saved.Article))
				if !saved.Persisted {
					fmt.Fprint(cmd.ErrOrStderr(), renderWarn("saved in memory only: storage write failed"))
				}
				return nil
			})
		},
	}
	f.bind(cmd)

	return cmd
}

func newEditCmd(configPath *string) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Re-save an article in place; unset flags keep current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				d, err := a.svc.Draft(idx)
				if err != nil {
					return err
				}
				if err := f.apply(cmd, &d); err != nil {
					return err
				}

				saved, err := a.svc.EditArticle(ctx, idx, d)
				if err != nil {
					return err
				}

				fmt.Fprint(cmd.OutOrStdout(), renderArticle(saved.Index, saved.Article))
				if !saved.Persisted {
					fmt.Fprint(cmd.ErrOrStderr(), renderWarn("saved in memory only: storage write failed"))
				}
				return nil
			})
		},
	}
	f.bind(cmd)

	return cmd
}

func newShowCmd(configPath *string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <index>",
		Short: "Show one article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			return runWithApp(cmd, *configPath, func(_ context.Context, a *app) error {
				if raw {
					d, err := a.svc.Draft(idx)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), d.Body)
					return nil
				}

				art, err := a.svc.Article(idx)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderArticle(idx, art))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the text as typed instead of the formatted block")

	return cmd
}

func newDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete an article; later indices shift down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex(args[0])
			if err != nil {
				return err
			}

			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				persisted, err := a.svc.DeleteArticle(ctx, idx)
				if err != nil {
					return err
				}
				reportPersisted(cmd, persisted, fmt.Sprintf("deleted #%d", idx))
				return nil
			})
		},
	}
}

func newMoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move an article to another position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			to, err := parseIndex(args[1])
			if err != nil {
				return err
			}

			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				persisted, err := a.svc.MoveArticle(ctx, from, to)
				if err != nil {
					return err
				}
				reportPersisted(cmd, persisted, fmt.Sprintf("moved #%d -> #%d", from, to))
				return nil
			})
		},
	}
}

func newClearCmd(configPath *string) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all articles in all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errNotConfirmed
			}

			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				persisted, err := a.svc.ClearAll(ctx)
				if err != nil {
					return err
				}
				reportPersisted(cmd, persisted, "cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deleting everything")

	return cmd
}

func newListCmd(configPath *string) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles, optionally of one category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, *configPath, func(_ context.Context, a *app) error {
				list, err := a.svc.Articles(category)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), renderList(list))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")

	return cmd
}

func newCategoriesCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show categories with article counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, *configPath, func(_ context.Context, a *app) error {
				fmt.Fprint(cmd.OutOrStdout(), renderCategories(a.svc.Categories()))
				return nil
			})
		},
	}
}

func newExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <category>",
		Short: "Export all articles of a category as one block",
		Long: `Export concatenates the formatted articles of a category, one blank
line between blocks, and sends the result to the configured clipboard
(stdout by default).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				payload, err := a.svc.ExportCategory(ctx, args[0])
				if err != nil {
					return err
				}
				emit(cmd, a, payload)
				return nil
			})
		},
	}
}

func newRatesCmd(configPath *string) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Print the official NBU USD/EUR rates for the primary source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWithApp(cmd, *configPath, func(ctx context.Context, a *app) error {
				src := source
				if src == "" {
					src = a.cfg.Rates.PrimarySource
				}

				text, ok := a.svc.Rates(ctx, src)
				if !ok {
					fmt.Fprint(cmd.ErrOrStderr(), renderWarn("no rates for source "+src))
					return nil
				}
				emit(cmd, a, text+"\n")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&source, "source", "s", "", "news agency (default: rates.primary_source)")

	return cmd
}

// emit печатает текст, если буфер обмена не stdout (иначе он уже напечатан).
func emit(cmd *cobra.Command, a *app, text string) {
	if a.cfg.Clipboard.Driver == clipboard.DriverStdout {
		return
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
}

func reportPersisted(cmd *cobra.Command, persisted bool, msg string) {
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	if !persisted {
		fmt.Fprint(cmd.ErrOrStderr(), renderWarn("applied in memory only: storage write failed"))
	}
}

func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("index must be a non-negative integer, got %q", s)
	}
	return n, nil
}
