package hierarchy

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/dyncast/errors"
)

var validate = validator.New()

// GenerateOptions parameterize the random hierarchy source.
type GenerateOptions struct {
	Seed uint64
	// Classes is the total number of classes, named Class1..ClassN.
	Classes int `validate:"min=1,max=256"`
	// Roots is how many leading classes derive from nothing.
	Roots int `validate:"min=0"`
	// BaseAttempts is how many random earlier classes each later class tries
	// to add as direct bases; repeats collapse.
	BaseAttempts int `validate:"min=0,max=16"`
	// VirtualPercent and PublicPercent are the odds of each edge flag.
	VirtualPercent uint32 `validate:"max=100"`
	PublicPercent  uint32 `validate:"max=100"`
}

// DefaultGenerateOptions returns ten classes, three roots, three base attempts
// and fair coins.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Classes:        10,
		Roots:          3,
		BaseAttempts:   3,
		VirtualPercent: 50,
		PublicPercent:  50,
	}
}

// Generate builds the hierarchy selected by opts.Seed.
func Generate(opts GenerateOptions) (*Hierarchy, error) {
	if err := validate.Struct(opts); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidInput, err, "generate options")
	}

	r := newRNG(opts.Seed)
	h := New()
	for i := 0; i < opts.Classes; i++ {
		c, err := h.NewClass(fmt.Sprintf("Class%d", i+1))
		if err != nil {
			return nil, err
		}
		if i >= opts.Roots && i > 0 {
			for j := 0; j < opts.BaseAttempts; j++ {
				base := h.classes[r.upto(uint32(i))]
				virtual := r.flipcoin(opts.VirtualPercent)
				public := r.flipcoin(opts.PublicPercent)
				// Bases are always earlier classes, so this never closes a cycle.
				if err := c.AddBase(base, virtual, public); err != nil {
					return nil, err
				}
			}
		}
	}
	return h, nil
}
