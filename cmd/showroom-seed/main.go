package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"showroom/internal/core/listing"
	"showroom/internal/modkit/repokit"
	"showroom/internal/platform/config"
	"showroom/internal/platform/logger"
	"showroom/internal/platform/store"

	browserepo "showroom/internal/services/browse/repo"
)

func main() {
	var (
		fFile    = flag.String("file", "-", "JSONL file of listing documents, - for stdin")
		fBatch   = flag.Int("batch", 500, "documents per transaction")
		fMigrate = flag.Bool("migrate", true, "apply schema migrations first")
		fCounts  = flag.Bool("counts", true, "also write clickhouse count rollups when clickhouse is enabled")
	)
	flag.Parse()

	if err := config.LoadDotenv(); err != nil {
		logger.Get().Panic().Err(err).Msg("load .env")
	}
	root := config.New()
	l := logger.Named("seed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stCfg := store.FromConfig(root, "showroom-seed")
	if *fMigrate {
		if err := browserepo.Migrate(stCfg.PG.URL); err != nil {
			l.Panic().Err(err).Msg("migrate failed")
		}
	}

	st, err := store.Open(ctx, stCfg, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(ctx, st)

	var counts *browserepo.CHCounter
	if *fCounts && st.CH != nil {
		counts = browserepo.NewCHCounter(st.CH)
		if err := counts.Ensure(ctx); err != nil {
			l.Panic().Err(err).Msg("create count rollup")
		}
	}

	in := io.Reader(os.Stdin)
	if *fFile != "-" {
		f, err := os.Open(*fFile)
		if err != nil {
			l.Panic().Err(err).Str("file", *fFile).Msg("open input")
		}
		defer f.Close()
		in = f
	}

	pg := browserepo.NewPG(nil)
	flush := func(batch []listing.Record) (int, error) {
		var n int
		err := repokit.WithTx(ctx, st.PG, func(q repokit.Queryer) error {
			var err error
			n, err = pg.Bind(q).Insert(ctx, batch)
			return err
		})
		if err != nil {
			return 0, err
		}
		if counts != nil {
			if err := counts.Record(ctx, batch); err != nil {
				return n, err
			}
		}
		return n, nil
	}

	total, err := load(in, max(*fBatch, 1), flush)
	if err != nil {
		l.Panic().Err(err).Int("written", total).Msg("seed failed")
	}
	l.Info().Int("written", total).Bool("counts", counts != nil).Msg("seed done")
}

// load decodes one listing per line and hands them to flush in batches
func load(r io.Reader, size int, flush func([]listing.Record) (int, error)) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4<<20)

	var (
		batch = make([]listing.Record, 0, size)
		total int
		line  int
	)
	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := flush(batch)
		total += n
		batch = batch[:0]
		return err
	}
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec listing.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, rec)
		if len(batch) == size {
			if err := send(); err != nil {
				return total, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return total, err
	}
	return total, send()
}
