package settings

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Service provides settings access with value normalization. HTTP bodies
// deliver JSON values (strings, numbers, bools); everything is normalized to
// the repository's string storage here.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a new settings service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// GetAll returns all settings with secret values masked
func (s *Service) GetAll() (map[string]string, error) {
	all, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	for key := range all {
		if isSecret(key) && all[key] != "" {
			all[key] = "********"
		}
	}
	return all, nil
}

// Get returns a single setting value, or "" when unset
func (s *Service) Get(key string) (string, error) {
	return s.repo.GetString(key, "")
}

// Set normalizes and stores a setting value
func (s *Service) Set(key string, value interface{}) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case float64:
		str = fmt.Sprintf("%g", v)
	case bool:
		str = fmt.Sprintf("%t", v)
	case nil:
		return s.repo.Delete(key)
	default:
		return fmt.Errorf("unsupported setting value type %T for %s", value, key)
	}

	return s.repo.Set(key, str, nil)
}

// Repo exposes the typed getters for config consumers
func (s *Service) Repo() *Repository {
	return s.repo
}

// isSecret reports whether a key holds a credential that must not be echoed
// back to the browser.
func isSecret(key string) bool {
	return key == KeyBackupAccessKey || key == KeyBackupSecretKey
}
