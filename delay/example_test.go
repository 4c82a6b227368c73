package delay_test

import (
	"context"
	"fmt"
	"time"

	"github.com/joeycumines/go-asyncprim/delay"
)

// Demonstrates waking every in-progress delay early, without disturbing
// delays started after Cancel returns.
func ExampleCancellable_Cancel() {
	c := delay.New(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		_ = c.Wait(context.Background(), time.Hour)
		if time.Since(start) < time.Hour {
			fmt.Println("woken early")
		}
	}()

	time.Sleep(10 * time.Millisecond)
	c.Cancel()
	<-done

	// output:
	// woken early
}
