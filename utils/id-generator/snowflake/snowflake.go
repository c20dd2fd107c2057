package snowflake

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

/* ========================================================================
 * Snowflake - 实体主键
 * ========================================================================
 * 布局: 41 位毫秒时间戳 | 10 位节点 | 12 位序列
 * 节点来源: Init(node_id) > 环境变量 SNOWFLAKE_NODE_ID > 0
 * 多实例部署时每个实例必须使用不同节点
 * ======================================================================== */

const (
	MaxNodeID = 1<<10 - 1
	EnvNodeID = "SNOWFLAKE_NODE_ID"
)

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init 替换全局节点，应在生成任何 ID 之前调用
func Init(nodeID int64) error {
	n, err := newNode(nodeID)
	if err != nil {
		return err
	}
	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// Generate 未 Init 时按环境变量懒加载节点，环境变量非法时 panic
func Generate() int64 {
	return current().Generate().Int64()
}

// Parse 返回毫秒时间戳与节点
func Parse(id int64) (ms, nodeID int64) {
	sid := snowflake.ID(id)
	return sid.Time(), sid.Node()
}

func current() *snowflake.Node {
	mu.Lock()
	defer mu.Unlock()
	if node != nil {
		return node
	}
	id, err := nodeFromEnv()
	if err == nil {
		node, err = newNode(id)
	}
	if err != nil {
		panic(err)
	}
	return node
}

func newNode(id int64) (*snowflake.Node, error) {
	if id < 0 || id > MaxNodeID {
		return nil, fmt.Errorf("snowflake: node id %d out of range [0, %d]", id, MaxNodeID)
	}
	return snowflake.NewNode(id)
}

func nodeFromEnv() (int64, error) {
	raw := os.Getenv(EnvNodeID)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("snowflake: %s=%q is not an integer", EnvNodeID, raw)
	}
	return id, nil
}
