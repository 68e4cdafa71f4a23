package utilities

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeNode returns a snowflake node using the node ID from the
// environment variable SNOWFLAKE_NODE, defaulting to node 1 when it is unset
// or not a number.
func NewSnowflakeNode() (*snowflake.Node, error) {
	nodeID, err := strconv.ParseInt(os.Getenv("SNOWFLAKE_NODE"), 10, 64)
	if err != nil {
		nodeID = 1
	}
	return snowflake.NewNode(nodeID)
}

// SnowflakeIDs returns a generator of positive int64 ids backed by node.
func SnowflakeIDs(node *snowflake.Node) func() int64 {
	return func() int64 { return node.Generate().Int64() }
}
