package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/hintboard/hintboard/internal/clock"
	"github.com/hintboard/hintboard/internal/config"
	"github.com/hintboard/hintboard/internal/migration"
	"github.com/hintboard/hintboard/internal/observability"
	"github.com/hintboard/hintboard/internal/server"
	"github.com/hintboard/hintboard/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

// newSnowflakeNode builds the process-wide ID generator. NODE_ID
// disambiguates instances behind a load balancer; single-node deployments
// can leave it unset.
func newSnowflakeNode() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("NODE_ID"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NODE_ID %q: %w", raw, err)
		}
		nodeID = parsed
	}
	return snowflake.NewNode(nodeID)
}
