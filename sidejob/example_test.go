package sidejob_test

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-asyncprim/sidejob"
)

func ExampleJob_Wake() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ran := make(chan struct{})
	j := sidejob.New(ctx, time.Hour, func(context.Context) error {
		close(ran)
		return nil
	})

	j.Wake()
	j.Wake() // coalesces with the pending run above
	j.Wake()

	<-ran
	fmt.Println("ran once")

	// output:
	// ran once
}
