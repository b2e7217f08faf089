package app

import (
	"fmt"
	"os"
	"time"

	"github.com/shrimpsizemoose/zhurnal/internal/billing"
	"github.com/shrimpsizemoose/zhurnal/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.JournalStore
	Sessions *Sessions
	Ledger   *billing.Ledger

	now func() time.Time
}

func NewService(configPath string) (*Service, error) {
	service, err := NewOfflineService(configPath)
	if err != nil {
		return nil, err
	}

	sessions, err := NewSessions(service.Config)
	if err != nil {
		service.Close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}
	service.Sessions = sessions

	return service, nil
}

// NewOfflineService opens config and storage only, for the bot and the exporter.
func NewOfflineService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Server.DataDir != "" {
		if err := os.MkdirAll(config.Server.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	return New(config, store, nil), nil
}

// New wires a service from already opened parts, sessions may be nil for
// tools that never log anybody in.
func New(config *Config, store store.JournalStore, sessions *Sessions) *Service {
	return &Service{
		Config:   config,
		Store:    store,
		Sessions: sessions,
		Ledger:   billing.NewLedger(store, config.Billing.Price),
		now:      time.Now,
	}
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if s.Sessions != nil {
		if err := s.Sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sessions: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
