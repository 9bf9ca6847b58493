package devapi

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/nfrund/zina/internal/domain"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the initial content of the dev API.
type Seed struct {
	Users         []SeedUser         `yaml:"users"`
	Notifications []SeedNotification `yaml:"notifications"`
	Products      []domain.Product   `yaml:"products"`
	Posts         []domain.Post      `yaml:"posts"`
}

// SeedUser is an account with a plain-text password, hashed on load.
type SeedUser struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Phone    string `yaml:"phone"`
}

// SeedNotification belongs to the user with the given email.
type SeedNotification struct {
	User      string    `yaml:"user"`
	Title     string    `yaml:"title"`
	Body      string    `yaml:"body"`
	Link      string    `yaml:"link"`
	Read      bool      `yaml:"read"`
	CreatedAt time.Time `yaml:"created_at"`
}

// LoadSeed reads the seed at path from fs, or the embedded seed when path is
// empty.
func LoadSeed(fs afero.Fs, path string) (Seed, error) {
	if path == "" {
		return ParseSeed(defaultSeed)
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return Seed{}, fmt.Errorf("devapi: read seed: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes and checks a YAML seed.
func ParseSeed(raw []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("devapi: parse seed: %w", err)
	}

	ids := make(map[string]bool, len(s.Products))
	for _, p := range s.Products {
		if p.ID == "" || p.Name == "" {
			return Seed{}, fmt.Errorf("devapi: product %q needs an id and a name", p.ID)
		}
		if ids[p.ID] {
			return Seed{}, fmt.Errorf("devapi: duplicate product id %q", p.ID)
		}
		if _, ok := domain.CategoryBySlug(p.Category); !ok {
			return Seed{}, fmt.Errorf("devapi: product %q has unknown category %q", p.ID, p.Category)
		}
		ids[p.ID] = true
	}

	emails := make(map[string]bool, len(s.Users))
	for _, u := range s.Users {
		if u.Email == "" || u.Password == "" {
			return Seed{}, fmt.Errorf("devapi: user %q needs an email and a password", u.ID)
		}
		emails[u.Email] = true
	}
	for _, n := range s.Notifications {
		if !emails[n.User] {
			return Seed{}, fmt.Errorf("devapi: notification %q for unknown user %q", n.Title, n.User)
		}
	}
	return s, nil
}
