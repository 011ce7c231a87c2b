// Package id hands out time-ordered 64-bit IDs. Each process owns one
// snowflake node: the server runs node 1, the worker node 2, so IDs never
// collide across the two.
package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init binds the process to its node ID. Subsequent calls are no-ops.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns the next ID. Init must have been called first.
func New() int64 {
	return node.Generate().Int64()
}
