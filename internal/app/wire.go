//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/calshare/server/internal/infra/config"
)

// InitializeApp wires the application from configuration.
func InitializeApp(cfg *config.Config) (*App, func(), error) {
	wire.Build(
		InfraSet,
		StorageSet,
		DomainSet,
		HandlerSet,
		NewApp,
	)
	return nil, nil, nil
}
