/*
Copyright © 2026 James Lawson (jpl-au) <hello@caelisco.net>
*/

// init_extensions.go opens the bank and hands it to extensions.
//
// Extensions register during init() but are only initialised when the
// first command needing the bank runs. The bank is opened once and shared
// by every extension through the Context.

package cmd

import (
	"fmt"
	"sync"

	"github.com/jpl-au/exambank/extension"
	"github.com/jpl-au/exambank/internal/bank"
	"github.com/jpl-au/exambank/internal/config"
	"github.com/jpl-au/exambank/internal/log"
	"github.com/jpl-au/exambank/internal/service"
)

// noStoreCommands lists top-level commands that run without opening the
// bank: the bootstrap commands plus any an extension declares Storeless.
var noStoreCommands map[string]bool

func buildNoStoreCommands() map[string]bool {
	cmds := map[string]bool{
		"init":       true,
		"config":     true,
		"help":       true,
		"completion": true,
	}
	for _, ext := range extension.All() {
		if s, ok := ext.(extension.Storeless); ok {
			for _, name := range s.NoStoreCommands() {
				cmds[name] = true
			}
		}
	}
	return cmds
}

var (
	extContext extension.Context
	extService *bank.Service
	initOnce   sync.Once
	initErr    error
)

// initExtensions opens the bank and injects it into every Initializable
// extension. Runs at most once per process.
func initExtensions() error {
	initOnce.Do(func() {
		svc, err := bank.New(DB(), Dir())
		if err != nil {
			initErr = fmt.Errorf("opening bank: %w", err)
			return
		}
		extService = svc
		log.SetProject(svc.Dir())

		cfg, err := config.Load()
		if err != nil {
			initErr = err
			return
		}
		extContext = extension.NewContext(svc, svc.DB(), cfg)
		svc.SetExtensionContext(extContext)

		for _, ext := range extension.All() {
			if init, ok := ext.(extension.Initializable); ok {
				if err := init.Init(extContext); err != nil {
					initErr = fmt.Errorf("init extension %s: %w", ext.Name(), err)
					return
				}
			}
		}
	})
	return initErr
}

// OpenService opens the bank for commands declared Storeless that still
// need it on some paths, such as serve and import. The caller must Close
// the returned service.
func OpenService() (*bank.Service, extension.Context, error) {
	svc, err := bank.New(DB(), Dir())
	if err != nil {
		return nil, nil, err
	}
	log.SetProject(svc.Dir())
	cfg, err := config.Load()
	if err != nil {
		svc.Close()
		return nil, nil, err
	}
	ctx := extension.NewContext(svc, svc.DB(), cfg)
	svc.SetExtensionContext(ctx)
	return svc, ctx, nil
}

// Service returns the bank opened for the running command, or nil for
// commands that run without one.
func Service() service.Service {
	if extService == nil {
		return nil
	}
	return extService
}

var extensionsOnce sync.Once

// registerExtensions adds commands from all registered extensions.
func registerExtensions() {
	extensionsOnce.Do(func() {
		for _, ext := range extension.All() {
			for _, cmd := range ext.Commands() {
				rootCmd.AddCommand(cmd)
			}
		}
		noStoreCommands = buildNoStoreCommands()
	})
}
