package bench

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/iamasit07/c4search/internal/repository/postgres"
	"github.com/iamasit07/c4search/internal/service/bot"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
)

// Summary averages the results of one algorithm at one depth.
type Summary struct {
	Algorithm        string  `json:"algorithm"`
	Depth            int     `json:"depth"`
	Runs             int     `json:"runs"`
	MeanNodes        float64 `json:"meanNodes"`
	MeanMs           float64 `json:"meanMs"`
	MeanPrunePercent float64 `json:"meanPrunePercent"`
}

// Summarize groups results by algorithm and depth, ordered by preset then
// depth.
func Summarize(results []Result) []Summary {
	groups := lo.GroupBy(results, func(r Result) string {
		return fmt.Sprintf("%s/%d", r.Algorithm, r.Depth)
	})
	summaries := lo.MapToSlice(groups, func(_ string, rs []Result) Summary {
		n := float64(len(rs))
		return Summary{
			Algorithm:        rs[0].Algorithm,
			Depth:            rs[0].Depth,
			Runs:             len(rs),
			MeanNodes:        float64(lo.SumBy(rs, func(r Result) int64 { return r.Nodes })) / n,
			MeanMs:           lo.SumBy(rs, func(r Result) float64 { return r.ElapsedMs }) / n,
			MeanPrunePercent: lo.SumBy(rs, func(r Result) float64 { return r.PrunePercent }) / n,
		}
	})

	slices.SortFunc(summaries, func(a, b Summary) int {
		if c := algorithmRank(a.Algorithm) - algorithmRank(b.Algorithm); c != 0 {
			return c
		}
		return a.Depth - b.Depth
	})
	return summaries
}

func algorithmRank(name string) int {
	alg, err := bot.ParseAlgorithm(name)
	if err != nil {
		return len(bot.AllAlgorithms())
	}
	return int(alg)
}

// Records converts results for BenchRepo.SaveResults.
func Records(results []Result) []postgres.BenchRecord {
	return lo.Map(results, func(r Result, _ int) postgres.BenchRecord {
		return postgres.BenchRecord{
			State:        r.State,
			Algorithm:    r.Algorithm,
			Depth:        r.Depth,
			Move:         r.Move,
			Score:        r.Score,
			Nodes:        r.Nodes,
			ElapsedMs:    r.ElapsedMs,
			PrunePercent: r.PrunePercent,
		}
	})
}

// WriteReport writes a plain text report, one block per state.
func WriteReport(w io.Writer, results []Result) error {
	bw := bufio.NewWriter(w)
	last := ""
	for i, r := range results {
		if i == 0 || r.State != last {
			fmt.Fprintf(bw, "state: %s\n", r.State)
			last = r.State
		}
		fmt.Fprintf(bw, "\t%s: depth=%d move=%d score=%d nodes=%d ms=%.3f prune=%.2f%%\n",
			r.Algorithm, r.Depth, r.Move, r.Score, r.Nodes, r.ElapsedMs, r.PrunePercent)
	}
	return bw.Flush()
}

type zstdFile struct {
	*zstd.Encoder
	f *os.File
}

func (z zstdFile) Close() error {
	if err := z.Encoder.Close(); err != nil {
		z.f.Close()
		return err
	}
	return z.f.Close()
}

// CreateReport creates path for writing, compressing when it ends in .zst.
func CreateReport(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return zstdFile{Encoder: enc, f: f}, nil
}
