package device

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Grid is the geometry of a launch: Stages successive passes, each made of
// Limbs x Elements independent work-items. All work-items of a stage
// complete before the next stage starts.
type Grid struct {
	Stages   int
	Limbs    int
	Elements int
}

// Size returns the number of work-items of a stage.
func (g Grid) Size() int {
	return g.Limbs * g.Elements
}

func (g Grid) String() string {
	return fmt.Sprintf("{stages: %d, limbs: %d, elements: %d}", g.Stages, g.Limbs, g.Elements)
}

// Kernel is the body of a work-item.
// Work-items of the same stage run concurrently and in no particular
// order, hence must not write where another work-item of the stage reads
// or writes.
type Kernel func(stage, limb, index int)

type command struct {
	name   string
	grid   Grid
	kernel Kernel
	fence  chan struct{}
}

// Launch enqueues the kernel on the grid and returns without waiting.
// Launches execute in order, one at a time.
// An invalid grid returns an error wrapping [ErrInvalidGrid] and nothing is launched.
func (d *Device) Launch(name string, grid Grid, kernel Kernel) error {

	if grid.Stages < 1 || grid.Limbs < 1 || grid.Elements < 1 || kernel == nil {
		return errors.Wrapf(ErrInvalidGrid, "cannot launch %s on grid %s", name, grid)
	}

	if err := d.enqueue(command{name: name, grid: grid, kernel: kernel}); err != nil {
		return err
	}

	d.metrics.launches.WithLabelValues(name).Inc()

	return nil
}

func (d *Device) run() {

	defer close(d.done)

	for cmd := range d.queue {

		if cmd.fence != nil {
			close(cmd.fence)
			continue
		}

		// The content of the device memory is undefined after an unrecoverable error.
		if d.Err() != nil {
			continue
		}

		d.execute(cmd)
	}
}

func (d *Device) execute(cmd command) {

	timer := d.metrics.startTimer(cmd.name)

	total := cmd.grid.Size()
	elements := cmd.grid.Elements

	for stage := 0; stage < cmd.grid.Stages; stage++ {

		g := new(errgroup.Group)
		g.SetLimit(d.workers)

		for start := 0; start < total; start += d.blockSize {

			end := min(start+d.blockSize, total)

			g.Go(func() (err error) {

				defer func() {
					if r := recover(); r != nil {
						err = errors.Wrapf(ErrKernelPanic, "%s at stage %d: %v", cmd.name, stage, r)
					}
				}()

				for k := start; k < end; k++ {
					cmd.kernel(stage, k/elements, k%elements)
				}

				return
			})
		}

		if err := g.Wait(); err != nil {
			d.fatal(err)
			return
		}
	}

	elapsed := timer.EndAndObserve()

	d.log.Trace().
		Str("kernel", cmd.name).
		Str("grid", cmd.grid.String()).
		Dur("elapsed", elapsed).
		Msg("Kernel completed")
}
