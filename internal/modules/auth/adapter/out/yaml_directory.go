package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"punchclock/internal/modules/auth/domain"
	authout "punchclock/internal/modules/auth/port/out"
	apperrors "punchclock/internal/platform/errors"
)

type directoryFile struct {
	Accounts []directoryAccount `yaml:"accounts"`
}

type directoryAccount struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	PasswordHash string `yaml:"password_hash"`
}

// YAMLDirectory stores bcrypt-hashed local accounts. A missing file is an empty directory.
type YAMLDirectory struct {
	path string
	cost int
	mu   sync.Mutex
}

func NewYAMLDirectory(path string) authout.Directory {
	return &YAMLDirectory{path: path, cost: bcrypt.DefaultCost}
}

func (d *YAMLDirectory) Authenticate(_ context.Context, email, password string) (domain.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	file, err := d.read()
	if err != nil {
		return domain.Identity{}, err
	}
	email = domain.NormalizeEmail(email)
	for _, acct := range file.Accounts {
		if domain.NormalizeEmail(acct.Email) != email {
			continue
		}
		if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
			if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
				return domain.Identity{}, apperrors.ErrAuthenticationFailed
			}
			return domain.Identity{}, fmt.Errorf("compare password for %s: %w", email, err)
		}
		return domain.Identity{
			ID:    acct.ID,
			Name:  acct.Name,
			Email: email,
			Role:  domain.ParseRole(acct.Role),
		}, nil
	}
	return domain.Identity{}, apperrors.ErrNotFound
}

func (d *YAMLDirectory) Upsert(_ context.Context, identity domain.Identity, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	file, err := d.read()
	if err != nil {
		return err
	}
	entry := directoryAccount{
		ID:           identity.ID,
		Name:         identity.Name,
		Email:        domain.NormalizeEmail(identity.Email),
		Role:         string(identity.Role),
		PasswordHash: string(hash),
	}
	replaced := false
	for i, acct := range file.Accounts {
		if domain.NormalizeEmail(acct.Email) == entry.Email {
			file.Accounts[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		file.Accounts = append(file.Accounts, entry)
	}
	return d.write(file)
}

func (d *YAMLDirectory) read() (directoryFile, error) {
	payload, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return directoryFile{}, nil
		}
		return directoryFile{}, fmt.Errorf("read directory: %w", err)
	}
	file := directoryFile{}
	if err := yaml.Unmarshal(payload, &file); err != nil {
		return directoryFile{}, fmt.Errorf("decode directory: %w", err)
	}
	return file, nil
}

func (d *YAMLDirectory) write(file directoryFile) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o700); err != nil {
		return fmt.Errorf("create directory dir: %w", err)
	}
	payload, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal directory: %w", err)
	}
	if err := os.WriteFile(d.path, payload, 0o600); err != nil {
		return fmt.Errorf("write directory: %w", err)
	}
	return nil
}
