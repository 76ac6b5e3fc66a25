// Copyright 2026 Bob Vawter (bob@vawter.org)
// SPDX-License-Identifier: Apache-2.0

package guarded_test

import (
	"context"
	"fmt"
	"slices"
	"time"

	"vawter.tech/guarded"
)

// This example shows a batch that performs several mutations with a
// single lock acquisition and a single change notification.
func ExampleList_Batch() {
	ctx := context.Background()
	l := guarded.Of([]int{1, 2, 3})

	err := l.Batch(ctx, func(tx *guarded.Tx[int]) error {
		tx.Append(4, 5, 6)
		tx.Update(func(items []int) []int {
			slices.Reverse(items)
			return items
		})
		return nil
	})
	if err != nil {
		panic(err)
	}
	fmt.Println(l)

	// Output:
	// list[6 5 4 3 2 1]
}

// This example shows a goroutine that watches a list for changes until
// no change has been seen for a while.
func ExampleList_WaitForChange() {
	ctx := context.Background()
	l := guarded.Of([]string{"apple", "banana"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			changed, err := l.WaitForChange(ctx, 200*time.Millisecond)
			if err != nil {
				panic(err)
			}
			if !changed {
				fmt.Println("timed out")
				return
			}
			n, _ := l.Len(ctx)
			fmt.Println("changed, length", n)
		}
	}()

	// Give the watcher a chance to start waiting.
	for l.Waiters() == 0 {
		time.Sleep(time.Millisecond)
	}
	if err := l.Append(ctx, "cherry"); err != nil {
		panic(err)
	}
	<-done

	// Output:
	// changed, length 3
	// timed out
}

// This example shows producers and consumers sharing a list as a
// queue.
func ExampleList_Take() {
	ctx := context.Background()
	l := guarded.New[int]()

	results := make(chan int)
	for range 2 {
		go func() {
			for {
				v, err := l.Take(ctx)
				if err != nil {
					return
				}
				results <- v * v
			}
		}()
	}

	if err := l.Extend(ctx, 1, 2, 3, 4); err != nil {
		panic(err)
	}
	sum := 0
	for range 4 {
		sum += <-results
	}
	fmt.Println("sum of squares:", sum)

	// Output:
	// sum of squares: 30
}
