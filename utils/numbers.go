package utils

import "github.com/bwmarrin/snowflake"

// Numbers returns a generator of human document numbers "<prefix>-<id>".
// Snowflake ids stay unique on one node even when calls share a clock tick.
func Numbers(node *snowflake.Node, prefix string) func() string {
	return func() string { return prefix + "-" + node.Generate().String() }
}

// LocalNumbers is Numbers on node 0, for single-terminal use and tests.
func LocalNumbers(prefix string) func() string {
	node, err := snowflake.NewNode(0)
	if err != nil {
		panic(err) // node 0 is always in range
	}
	return Numbers(node, prefix)
}
