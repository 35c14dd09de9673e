package reverb_test

import (
	"fmt"

	"github.com/cwbudde/nhhall/dsp/buffer"
	"github.com/cwbudde/nhhall/dsp/effects/reverb"
)

func ExampleFeedbackGain() {
	fmt.Printf("%.4f\n", reverb.FeedbackGain(1))
	fmt.Printf("%.4f\n", reverb.FeedbackGain(0.5))
	// Output:
	// 0.4226
	// 0.1786
}

func ExampleNewHall() {
	need := reverb.MemoryRequirement(48000)

	arena, err := buffer.NewArena(need)
	if err != nil {
		panic(err)
	}

	h, err := reverb.NewHall(48000, reverb.WithAllocator(arena))
	if err != nil {
		panic(err)
	}
	defer h.Close()

	h.SetRT60(2)
	left, right := h.Process(1, 1)

	fmt.Println(need, h.Muted(), arena.Available())
	fmt.Printf("%.2f %.2f\n", left, right)
	// Output:
	// 46080 false 0
	// 0.10 0.15
}
