package main

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
	"github.com/spf13/cobra"

	"github.com/joshuapare/umalloc/arena"
	"github.com/joshuapare/umalloc/arena/alloc"
	"github.com/joshuapare/umalloc/internal/logger"
)

type stressOptions struct {
	globalOptions `mapstructure:",squash"`

	Region       string  `mapstructure:"region"`
	Limit        int     `mapstructure:"limit"`
	Ops          int     `mapstructure:"ops"`
	MaxSize      int     `mapstructure:"max-size"`
	Seed         int64   `mapstructure:"seed"`
	FreeRatio    float64 `mapstructure:"free-ratio"`
	MinGrowUnits uint64  `mapstructure:"min-grow-units"`
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized allocation workload",
		Long: `The stress command drives the allocator with a seeded random mix of
allocations and frees. Every new block is checked against its live neighbors
for overlap, and every block's contents are checksummed when written and
verified before it is freed. The run ends by checking the free list
invariants and the unit accounting, then releasing everything.

Example:
  umallocctl stress
  umallocctl stress --region mapped --ops 100000 --max-size 65536
  UMALLOC_SEED=7 umallocctl stress --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts stressOptions
			if err := loadOptions(cmd.Flags(), &opts); err != nil {
				return err
			}
			out, err := setup(cmd, opts.globalOptions)
			if err != nil {
				return err
			}
			return runStress(opts, out)
		},
	}

	cmd.Flags().String("region", "mem", "Region kind: mem (Go heap) or mapped (virtual memory reservation)")
	cmd.Flags().Int("limit", 64<<20, "Region capacity in bytes (0 sizes a mapped region to the host)")
	cmd.Flags().Int("ops", 10000, "Number of operations")
	cmd.Flags().Int("max-size", 4096, "Largest request in bytes")
	cmd.Flags().Int64("seed", 1, "Random seed")
	cmd.Flags().Float64("free-ratio", 0.5, "Probability that an operation frees a live block")
	cmd.Flags().Uint64("min-grow-units", alloc.DefaultMinGrowUnits, "Minimum units requested from the region per grow")
	return cmd
}

// StressReport summarizes a stress run.
type StressReport struct {
	Region string      `json:"region"`
	Limit  int         `json:"limit"`
	Seed   int64       `json:"seed"`
	Ops    int         `json:"ops"`
	Allocs int         `json:"allocs"`
	Frees  int         `json:"frees"`
	Failed int         `json:"failed"`
	Live   int         `json:"live"`
	Stats  alloc.Stats `json:"stats"`

	FreeBlocks  int    `json:"free_blocks"`
	LargestFree uint64 `json:"largest_free_bytes"`

	// Free blocks left once every live block is released; 1 when all
	// neighbors coalesced.
	DrainedBlocks int `json:"drained_blocks"`
}

type stressBlock struct {
	p   alloc.Ptr
	buf []byte
	sum uint64 // murmur3 of buf when written
}

func runStress(opts stressOptions, out *printer) error {
	if opts.Ops < 0 || opts.MaxSize < 1 {
		return errors.New("ops must be >= 0 and max-size >= 1")
	}
	if opts.FreeRatio < 0 || opts.FreeRatio > 1 {
		return fmt.Errorf("free-ratio must be within [0, 1], got %v", opts.FreeRatio)
	}

	r, limit, closeRegion, err := openRegion(opts.Region, opts.Limit)
	if err != nil {
		return err
	}
	defer closeRegion()

	a, err := alloc.New(r, &alloc.Config{MinGrowUnits: opts.MinGrowUnits, Logger: logger.L})
	if err != nil {
		return err
	}

	report, err := stress(a, opts)
	if err != nil {
		return err
	}
	report.Region = opts.Region
	report.Limit = limit

	if opts.JSON {
		return out.json(report)
	}
	printStressReport(out, report)
	return nil
}

// openRegion creates the region a stress run allocates from and reports its
// capacity.
func openRegion(kind string, limit int) (arena.Region, int, func(), error) {
	switch kind {
	case "mem":
		if limit <= 0 {
			return nil, 0, nil, errors.New("mem region needs a positive limit")
		}
		m := arena.NewMem(limit)
		return m, m.Cap(), func() {}, nil
	case "mapped":
		if limit <= 0 {
			limit = arena.DefaultReserve()
		}
		m, err := arena.NewMapped(limit)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("failed to reserve %d bytes: %w", limit, err)
		}
		return m, m.Cap(), func() { _ = m.Close() }, nil
	default:
		return nil, 0, nil, fmt.Errorf("unknown region %q (want mem or mapped)", kind)
	}
}

// stress runs the workload against a, verifies it, and drains it.
func stress(a *alloc.NextFit, opts stressOptions) (StressReport, error) {
	rng := rand.New(rand.NewSource(opts.Seed))
	report := StressReport{Seed: opts.Seed, Ops: opts.Ops}

	// Live spans keyed by header offset, valued by end offset.
	spans := treemap.NewWith(utils.Int64Comparator)

	var live []stressBlock
	for op := 0; op < opts.Ops; op++ {
		if len(live) > 0 && rng.Float64() < opts.FreeRatio {
			i := rng.Intn(len(live))
			if err := verifyBlock(live[i]); err != nil {
				return report, err
			}
			a.Free(live[i].p)
			spans.Remove(spanStart(live[i].p))
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			report.Frees++
			continue
		}

		n := 1 + rng.Intn(opts.MaxSize)
		p, buf, err := a.Alloc(n)
		if errors.Is(err, alloc.ErrOutOfMemory) {
			logger.L.Debug("allocation failed", "op", op, "bytes", n)
			report.Failed++
			continue
		}
		if err != nil {
			return report, err
		}

		lo, hi := spanStart(p), int64(p)+int64(cap(buf))
		if err := checkDisjoint(spans, lo, hi); err != nil {
			return report, err
		}
		spans.Put(lo, hi)

		rng.Read(buf)
		live = append(live, stressBlock{p: p, buf: buf, sum: murmur3.Sum64(buf)})
		report.Allocs++
	}

	if err := a.Check(); err != nil {
		return report, err
	}
	var liveUnits uint64
	for _, b := range live {
		if err := verifyBlock(b); err != nil {
			return report, err
		}
		liveUnits += uint64(len(a.Payload(b.p)))/alloc.Unit + 1
	}
	report.Stats = a.Stats()
	if liveUnits != report.Stats.InUseUnits {
		return report, fmt.Errorf("live blocks hold %d units, allocator accounts %d", liveUnits, report.Stats.InUseUnits)
	}

	report.Live = len(live)
	for _, b := range a.FreeBlocks() {
		report.FreeBlocks++
		report.LargestFree = max(report.LargestFree, b.Bytes())
	}

	for _, b := range live {
		a.Free(b.p)
	}
	if err := a.Check(); err != nil {
		return report, err
	}
	report.DrainedBlocks = len(a.FreeBlocks())
	return report, nil
}

// spanStart is the header offset of the block at p.
func spanStart(p alloc.Ptr) int64 {
	return int64(p) - alloc.Unit
}

// checkDisjoint reports an error if [lo, hi) intersects any span in spans.
func checkDisjoint(spans *treemap.Map, lo, hi int64) error {
	if k, end := spans.Floor(lo); k != nil && end.(int64) > lo {
		return fmt.Errorf("block [0x%x, 0x%x) overlaps live block at 0x%x", lo, hi, k)
	}
	if k, _ := spans.Ceiling(lo); k != nil && k.(int64) < hi {
		return fmt.Errorf("block [0x%x, 0x%x) overlaps live block at 0x%x", lo, hi, k)
	}
	return nil
}

func verifyBlock(b stressBlock) error {
	if sum := murmur3.Sum64(b.buf); sum != b.sum {
		return fmt.Errorf("block %s corrupted: checksum %016x, want %016x", b.p, sum, b.sum)
	}
	return nil
}

func printStressReport(out *printer, r StressReport) {
	s := r.Stats
	out.info("region       %s (%d bytes)\n", r.Region, r.Limit)
	out.info("operations   %d (%d allocs, %d frees, %d failed, seed %d)\n", r.Ops, r.Allocs, r.Frees, r.Failed, r.Seed)
	out.info("grows        %d (%d bytes, region now %d bytes)\n", s.GrowCalls, s.GrowBytes, s.RegionBytes)
	out.verbosef("exact fits   %d\n", s.ExactFits)
	out.verbosef("splits       %d\n", s.Splits)
	out.verbosef("coalesced    %d forward, %d backward\n", s.CoalesceForward, s.CoalesceBackward)
	out.info("free list    %d blocks, largest %d bytes\n", r.FreeBlocks, r.LargestFree)
	out.info("units        %d free + %d in use = %d managed\n", s.FreeUnits, s.InUseUnits, s.ManagedUnits())
	out.info("drained      %d free blocks after releasing %d live\n", r.DrainedBlocks, r.Live)
	out.info("check        ok\n")
}
