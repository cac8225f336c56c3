package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Belphemur/ShowFeed/internal/models"
)

// feedRepository is the part of feed.Repository the CLI drives.
type feedRepository interface {
	RequestMore(page int)
	Search(query string)
	LoadNextPage() bool
	Refresh()
	FavoriteShow(ctx context.Context, id int) error
	RemoveFromFavorites(ctx context.Context, id int) error
	FavoriteShows(ctx context.Context) <-chan []models.Show
}

const helpText = `commands:
  more          load the next page
  page N        load page N
  search QUERY  search the catalog
  fav N         add show N to favorites
  unfav N       remove show N from favorites
  favorites     list favorites
  refresh       reload the first page
  help          show this help
  quit          exit`

var errUnknownCommand = errors.New("unknown command")

type command struct {
	name string
	id   int
	text string
}

func parseCommand(line string) (command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	switch name {
	case "more", "favorites", "refresh", "help", "quit", "exit":
		return command{name: name}, nil
	case "search":
		if rest == "" {
			return command{}, errors.New("search needs a query")
		}
		return command{name: name, text: rest}, nil
	case "page", "fav", "unfav":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return command{}, fmt.Errorf("%s needs a non-negative number, got %q", name, rest)
		}
		return command{name: name, id: n}, nil
	case "":
		return command{}, nil
	default:
		return command{}, fmt.Errorf("%w %q", errUnknownCommand, name)
	}
}

// execute runs cmd and reports whether the CLI should exit.
func execute(ctx context.Context, repo feedRepository, cmd command, out io.Writer) (bool, error) {
	switch cmd.name {
	case "":
	case "more":
		if !repo.LoadNextPage() {
			fmt.Fprintln(out, "no more pages")
		}
	case "page":
		repo.RequestMore(cmd.id)
	case "search":
		repo.Search(cmd.text)
	case "refresh":
		repo.Refresh()
	case "fav":
		if err := repo.FavoriteShow(ctx, cmd.id); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "show %d added to favorites\n", cmd.id)
	case "unfav":
		if err := repo.RemoveFromFavorites(ctx, cmd.id); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "show %d removed from favorites\n", cmd.id)
	case "favorites":
		listCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		shows, ok := <-repo.FavoriteShows(listCtx)
		if !ok {
			return false, errors.New("favorites unavailable")
		}
		printFavorites(out, shows)
	case "help":
		fmt.Fprintln(out, helpText)
	case "quit", "exit":
		return true, nil
	}
	return false, nil
}

// readCommands executes one command per line of in until quit, EOF or ctx is done.
func readCommands(ctx context.Context, in io.Reader, repo feedRepository, out io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v (type help)\n", err)
			continue
		}
		quit, err := execute(ctx, repo, cmd, out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return
		}
	}
}

func printPage(out io.Writer, page models.ShowsPage) {
	next := strconv.Itoa(page.NextPage)
	if !page.HasMore() {
		next = "none"
	}
	fmt.Fprintf(out, "-- %d shows, next page %s --\n", len(page.Shows), next)
	for _, s := range page.Shows {
		mark := " "
		if s.IsFavorite {
			mark = "*"
		}
		fmt.Fprintf(out, "[%s] %7d  %s", mark, s.ID, s.Name)
		if s.PremieredDate != "" {
			fmt.Fprintf(out, " (%s)", s.PremieredDate[:min(4, len(s.PremieredDate))])
		}
		if s.Rating > 0 {
			fmt.Fprintf(out, " %.1f", s.Rating)
		}
		fmt.Fprintln(out)
	}
}

func printFavorites(out io.Writer, shows []models.Show) {
	if len(shows) == 0 {
		fmt.Fprintln(out, "no favorites")
		return
	}
	for _, s := range shows {
		fmt.Fprintf(out, "[*] %7d  %s\n", s.ID, s.Name)
	}
}
