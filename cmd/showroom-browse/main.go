package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"showroom/internal/core/listing"
	"showroom/internal/modkit/repokit"
	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/store"

	"showroom/internal/services/browse/domain"
	browsemod "showroom/internal/services/browse/module"
	browserepo "showroom/internal/services/browse/repo"
	browsesvc "showroom/internal/services/browse/service"
)

func main() {
	var (
		fPath    = flag.String("path", "", "taxonomy path: category[/sub[/brand[/model]]]")
		fQuery   = flag.String("query", "", "url query string, e.g. sort=priceAsc&min=100&tradable=yes")
		fSize    = flag.Int("size", 0, "grow the view to at least this many items (0 = query or default size)")
		fJSON    = flag.Bool("json", false, "print the full view as json")
		fTimeout = flag.Duration("timeout", 30*time.Second, "give up waiting for fetches after this long")
	)
	flag.Parse()

	if err := config.LoadDotenv(); err != nil {
		logger.Get().Panic().Err(err).Msg("load .env")
	}
	root := config.New()
	l := logger.Get()

	target, err := parsePath(*fPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	values, _ := url.ParseQuery(strings.TrimPrefix(*fQuery, "?"))

	ctx, cancel := context.WithTimeout(context.Background(), *fTimeout)
	defer cancel()

	st, err := store.Open(ctx, store.FromConfig(root, "showroom-browse"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	opts := browsemod.FromConfig(root)
	r := browserepo.NewPG(opts.Indexes).Bind(st.PG)

	var counter domain.Counter = r
	if opts.Counts == browsemod.CountsCH && st.CH != nil {
		counter = browserepo.FallbackCounter{Primary: browserepo.NewCHCounter(st.CH), Fallback: r}
	}

	var location string
	sess, err := browsesvc.NewSession(ctx, "cli", opts.Service, browsesvc.Deps{
		Store:   r,
		Counter: counter,
		Navigator: domain.NavigatorFunc(func(path, query string) error {
			location = path
			if query != "" {
				location += "?" + query
			}
			return nil
		}),
		Log: logger.Named("browse"),
	})
	if err != nil {
		l.Panic().Err(err).Msg("session failed")
	}
	defer sess.Close()

	sess.Enter(target, values)
	if *fSize > 0 {
		sess.SetViewSize(*fSize)
	}
	if err := sess.Settle(ctx); err != nil {
		l.Panic().Err(err).Msg("fetches did not settle")
	}
	v := sess.View()
	if location == "" {
		location = v.Location
	}

	if *fJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			l.Panic().Err(err).Msg("encode view")
		}
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRICE\tCREATED\tTITLE")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Price.Text(), created(it), it.Attr(listing.AttrTitle).Text())
	}
	_ = tw.Flush()

	total := "?"
	if v.Total != nil {
		total = fmt.Sprint(*v.Total)
	}
	fmt.Printf("\nshowing %d of %d matched, %d loaded, %s total, more=%v\n", len(v.Items), v.Matched, v.Loaded, total, v.HasMore)
	if v.Error != "" {
		fmt.Printf("error: %s\n", v.Error)
	}
	if v.Fallback {
		fmt.Println("note: store could not sort this query, showing one unsorted page")
	}
	fmt.Println(location)
}

func parsePath(p string) (domain.Target, error) {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	if len(parts) == 0 || parts[0] == "" || len(parts) > 4 {
		return domain.Target{}, fmt.Errorf("-path wants category[/sub[/brand[/model]]], got %q", p)
	}
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return domain.Target{Category: parts[0], SubCategory: parts[1], Brand: parts[2], Model: parts[3]}, nil
}

func created(r listing.Record) string {
	if r.CreatedAt.IsZero() {
		return "-"
	}
	return r.CreatedAt.UTC().Format(time.DateOnly)
}
