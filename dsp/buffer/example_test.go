package buffer_test

import (
	"errors"
	"fmt"

	"github.com/cwbudde/nhhall/dsp/buffer"
)

func ExampleArena() {
	arena, err := buffer.NewArena(1024)
	if err != nil {
		fmt.Println("error")
		return
	}

	ring, _ := arena.Allocate(768)
	fmt.Println(len(ring), arena.Available())

	_, err = arena.Allocate(512)
	fmt.Println(errors.Is(err, buffer.ErrAllocationFailure))

	arena.Deallocate(ring)
	fmt.Println(arena.Available())

	// Output:
	// 768 256
	// true
	// 1024
}
