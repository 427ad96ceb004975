package fundo_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/petrijr/fundo"
)

// Example_processOperations demonstrates enqueuing durable work and draining
// it with function hooks on an in-memory engine.
func Example_processOperations() {
	done := make(chan fundo.Operation, 2)

	eng, err := fundo.NewInMemoryEngine(fundo.Config{
		Processor: fundo.ProcessorFuncs{
			ProcessFunc: func(op fundo.Operation) fundo.Result {
				done <- op
				return fundo.Success
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	ctx := context.Background()
	if _, err := eng.Enqueue(ctx, "upload chunk 1"); err != nil {
		log.Fatal(err)
	}
	if _, err := eng.Enqueue(ctx, "upload chunk 2"); err != nil {
		log.Fatal(err)
	}

	if err := eng.Start(); err != nil {
		log.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		op := <-done
		fmt.Printf("processed %d: %v\n", op.ID, op.Payload)
	}
	eng.Shutdown()

	// Output:
	// processed 1: upload chunk 1
	// processed 2: upload chunk 2
}

// Example_retry demonstrates the fixed-delay retry policy: a retryable
// result leaves the operation at the head of the queue and it is attempted
// again after the configured delay.
func Example_retry() {
	attempts := 0
	done := make(chan struct{})

	eng, err := fundo.NewInMemoryEngine(fundo.Config{
		RetryDelay: 10 * time.Millisecond,
		Processor: fundo.ProcessorFuncs{
			ProcessFunc: func(op fundo.Operation) fundo.Result {
				attempts++
				if attempts < 3 {
					return fundo.RetryableError
				}
				close(done)
				return fundo.Success
			},
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	if _, err := eng.Enqueue(context.Background(), "flaky sync"); err != nil {
		log.Fatal(err)
	}
	if err := eng.Start(); err != nil {
		log.Fatal(err)
	}

	<-done
	eng.Shutdown()
	fmt.Printf("attempts: %d\n", attempts)

	// Output:
	// attempts: 3
}
