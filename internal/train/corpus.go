package train

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/example/go-hindi-bpe/internal/text"
)

// ErrCorpusNotFound is returned when the training corpus does not exist.
var ErrCorpusNotFound = errors.New("corpus not found")

const (
	DefaultBatchSize = 10000
	DefaultWorkers   = 4

	maxLineBytes = 16 << 20
)

// CountOptions bounds memory and parallelism while counting.
type CountOptions struct {
	// BatchSize is the number of lines handed to one worker.
	BatchSize int
	// Workers is the maximum number of batches counted at once.
	Workers int
}

func (o CountOptions) withDefaults() CountOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	return o
}

// CountFile counts normalized words in the corpus at path.
func CountFile(ctx context.Context, path string, norm *text.Normalizer, opts CountOptions) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	return CountReader(ctx, f, norm, opts)
}

// CountReader counts normalized, whitespace-delimited words read from r.
// Lines are grouped into batches that are normalized and counted
// concurrently, then merged into one running count.
func CountReader(ctx context.Context, r io.Reader, norm *text.Normalizer, opts CountOptions) (map[string]int, error) {
	opts = opts.withDefaults()

	var (
		mu    sync.Mutex
		total = make(map[string]int)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	flush := func(batch []string) {
		g.Go(func() error {
			local := make(map[string]int)
			for _, line := range batch {
				for _, w := range text.Words(norm.Normalize(line)) {
					local[w]++
				}
			}
			mu.Lock()
			for w, n := range local {
				total[w] += n
			}
			mu.Unlock()
			return nil
		})
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	batch := make([]string, 0, opts.BatchSize)
	var scanErr error
	for sc.Scan() {
		if err := gctx.Err(); err != nil {
			scanErr = err
			break
		}
		batch = append(batch, sc.Text())
		if len(batch) == opts.BatchSize {
			flush(batch)
			batch = make([]string, 0, opts.BatchSize)
		}
	}
	if scanErr == nil {
		scanErr = sc.Err()
	}
	if scanErr == nil && len(batch) > 0 {
		flush(batch)
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, fmt.Errorf("read corpus: %w", scanErr)
	}
	return total, nil
}
