package main

import (
	"github.com/kalambet/folio/internal/config"
	"github.com/kalambet/folio/internal/remote"
	"github.com/kalambet/folio/internal/view"
)

// newRemoteClient builds the profile service client from config. The bearer
// token is read from the secret store at request time.
func newRemoteClient(cfg config.Config, secrets config.SecretStore) *remote.Client {
	return remote.New(cfg.API.BaseURL, config.TokenProvider(secrets), remote.WithTimeout(cfg.Client.Timeout))
}

func newController(svc view.Service) *view.Controller {
	return view.NewController(svc, view.NewStore(), nil)
}
