// context.go defines what an extension can reach once the bank is open.
//
// Extensions receive the Context in Init, after registration, because the
// bank is only opened once a command that needs it runs.

package extension

import (
	"database/sql"

	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/service"
)

// Context provides extensions access to the open bank.
type Context interface {
	// Service returns the open bank.
	Service() service.Service

	// DB exposes the database for extensions keeping their own tables.
	// Core tables must only be changed through Service.
	DB() *sql.DB

	// Config returns the effective configuration.
	Config() *config.Config
}

type extContext struct {
	svc service.Service
	db  *sql.DB
	cfg *config.Config
}

// NewContext creates a new extension context.
func NewContext(svc service.Service, db *sql.DB, cfg *config.Config) Context {
	return &extContext{svc: svc, db: db, cfg: cfg}
}

func (c *extContext) Service() service.Service { return c.svc }
func (c *extContext) DB() *sql.DB              { return c.db }
func (c *extContext) Config() *config.Config   { return c.cfg }
