// Package providertest holds helpers shared by provider tests.
package providertest

import (
	"time"

	"github.com/drblury/mediacatalog/internal/routes"
)

// Config is a plain provider.Config.
type Config struct {
	Backend             string
	DatasetDir          string
	PostgresURL         string
	SQLiteFile          string
	RemoteSSEURL        string
	RemoteGRPCAddress   string
	RemoteTimeout       time.Duration
	Paths               routes.Paths
	StreamBufferSize    int
	ProducerConcurrency int
}

func (c *Config) GetBackend() string              { return c.Backend }
func (c *Config) GetDatasetDir() string           { return c.DatasetDir }
func (c *Config) GetPostgresURL() string          { return c.PostgresURL }
func (c *Config) GetSQLiteFile() string           { return c.SQLiteFile }
func (c *Config) GetRemoteSSEURL() string         { return c.RemoteSSEURL }
func (c *Config) GetRemoteGRPCAddress() string    { return c.RemoteGRPCAddress }
func (c *Config) GetRemoteTimeout() time.Duration { return c.RemoteTimeout }
func (c *Config) GetPaths() routes.Paths          { return c.Paths }
func (c *Config) GetStreamBufferSize() int        { return c.StreamBufferSize }
func (c *Config) GetProducerConcurrency() int     { return c.ProducerConcurrency }
