package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/umalloc/arena"
	"github.com/joshuapare/umalloc/arena/alloc"
	"github.com/joshuapare/umalloc/internal/logger"
)

type replayOptions struct {
	globalOptions `mapstructure:",squash"`

	Limit        int    `mapstructure:"limit"`
	MinGrowUnits uint64 `mapstructure:"min-grow-units"`
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <op>...",
		Short: "Replay allocations and frees, showing the free list after each",
		Long: `The replay command applies a sequence of operations to a fresh allocator
and prints the free list after every step. Operations are:

  a:<bytes>   allocate; allocations are numbered #1, #2, ... in order
  f:<n>       free allocation #n

The cursor, where the next search starts, is marked with '*'.

Example:
  umallocctl replay a:32 a:32 a:32 f:2 f:1 f:3
  umallocctl replay --min-grow-units 16 a:100 f:1 a:100`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts replayOptions
			if err := loadOptions(cmd.Flags(), &opts); err != nil {
				return err
			}
			out, err := setup(cmd, opts.globalOptions)
			if err != nil {
				return err
			}
			return runReplay(opts, args, out)
		},
	}

	cmd.Flags().Int("limit", 1<<20, "Region capacity in bytes")
	cmd.Flags().Uint64("min-grow-units", 64, "Minimum units requested from the region per grow")
	return cmd
}

type replayOp struct {
	alloc bool
	arg   int // byte count for allocations, allocation number for frees
}

func parseOp(s string) (replayOp, error) {
	kind, val, ok := strings.Cut(s, ":")
	if !ok {
		return replayOp{}, fmt.Errorf("invalid op %q: want a:<bytes> or f:<n>", s)
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		return replayOp{}, fmt.Errorf("invalid op %q: %q is not a non-negative integer", s, val)
	}
	switch kind {
	case "a":
		return replayOp{alloc: true, arg: n}, nil
	case "f":
		if n == 0 {
			return replayOp{}, fmt.Errorf("invalid op %q: allocations are numbered from 1", s)
		}
		return replayOp{arg: n}, nil
	default:
		return replayOp{}, fmt.Errorf("invalid op %q: unknown kind %q", s, kind)
	}
}

// ReplayStep is the outcome of one replayed operation.
type ReplayStep struct {
	Op     string        `json:"op"`
	ID     int           `json:"id,omitempty"`
	Ptr    string        `json:"ptr,omitempty"`
	Units  uint64        `json:"units,omitempty"`
	Error  string        `json:"error,omitempty"`
	Free   []alloc.Block `json:"free_list"`
	Cursor uint64        `json:"cursor"`
}

func runReplay(opts replayOptions, args []string, out *printer) error {
	ops := make([]replayOp, len(args))
	for i, s := range args {
		op, err := parseOp(s)
		if err != nil {
			return err
		}
		ops[i] = op
	}

	a, err := alloc.New(arena.NewMem(opts.Limit), &alloc.Config{MinGrowUnits: opts.MinGrowUnits, Logger: logger.L})
	if err != nil {
		return err
	}

	// ptrs[i] is allocation #i+1; Nil once freed.
	var ptrs []alloc.Ptr
	steps := make([]ReplayStep, 0, len(ops))

	for i, op := range ops {
		step := ReplayStep{Op: args[i]}
		if op.alloc {
			p, buf, err := a.Alloc(op.arg)
			switch {
			case errors.Is(err, alloc.ErrOutOfMemory):
				step.Error = "out of memory"
			case err != nil:
				return err
			default:
				ptrs = append(ptrs, p)
				step.ID = len(ptrs)
				step.Ptr = p.String()
				step.Units = uint64(cap(buf))/alloc.Unit + 1
			}
		} else {
			if op.arg > len(ptrs) {
				return fmt.Errorf("%s: allocation #%d does not exist", args[i], op.arg)
			}
			p := ptrs[op.arg-1]
			if p == alloc.Nil {
				return fmt.Errorf("%s: allocation #%d already freed", args[i], op.arg)
			}
			step.ID = op.arg
			step.Ptr = p.String()
			step.Units = uint64(len(a.Payload(p)))/alloc.Unit + 1
			a.Free(p)
			ptrs[op.arg-1] = alloc.Nil
		}

		if err := a.Check(); err != nil {
			return err
		}
		step.Free = a.FreeBlocks()
		step.Cursor = a.Cursor()
		steps = append(steps, step)

		if !opts.JSON {
			printReplayStep(out, step)
		}
	}

	if opts.JSON {
		return out.json(steps)
	}
	return nil
}

func printReplayStep(out *printer, s ReplayStep) {
	switch {
	case s.Error != "":
		out.info("%-10s %s\n", s.Op, s.Error)
	case strings.HasPrefix(s.Op, "a:"):
		out.info("%-10s #%d at %s (%d units)\n", s.Op, s.ID, s.Ptr, s.Units)
	default:
		out.info("%-10s #%d at %s released (%d units)\n", s.Op, s.ID, s.Ptr, s.Units)
	}

	var b strings.Builder
	if s.Cursor == 0 {
		b.WriteString(" *sentinel")
	}
	for _, blk := range s.Free {
		fmt.Fprintf(&b, " [0x%x %du]", blk.Off, blk.Units)
		if blk.Off == s.Cursor {
			b.WriteString("*")
		}
	}
	if len(s.Free) == 0 {
		b.WriteString(" (empty)")
	}
	out.info("%10s free:%s\n", "", b.String())
}
