package common

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	nodeMu sync.Mutex
	node   *snowflake.Node
)

// SetNodeID configures the snowflake node used by UUIDint64.
// Every server process sharing a database must use a distinct node id.
func SetNodeID(id int64) error {
	n, err := snowflake.NewNode(id)
	if err != nil {
		return err
	}
	nodeMu.Lock()
	node = n
	nodeMu.Unlock()
	return nil
}

// UUIDint64 returns a time-ordered unique int64 id.
func UUIDint64() int64 {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	return node.Generate().Int64()
}
