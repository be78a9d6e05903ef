package storage

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/eugenenazirov/pizza-dough/internal/calculator"
)

const maxEaterTypes = 20

var (
	// ErrInvalidEaterTypes indicates the provided eater types violate validation rules.
	ErrInvalidEaterTypes = errors.New("eater types must contain between 1 and 20 uniquely named entries with non-negative factors")
	// ErrInvalidRecipe indicates the provided recipe cannot be used for calculations.
	ErrInvalidRecipe = errors.New("invalid recipe")
)

// Storage provides access to the recipe and eater types used by the calculator.
type Storage interface {
	GetRecipe() (calculator.Recipe, error)
	SetRecipe(recipe calculator.Recipe) error
	GetEaterTypes() ([]calculator.EaterType, error)
	SetEaterTypes(eaters []calculator.EaterType) error
	Replace(recipe calculator.Recipe, eaters []calculator.EaterType) error
	Snapshot() (calculator.Recipe, []calculator.EaterType, error)
}

// MemoryStorage keeps the active recipe and eater types in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	recipe calculator.Recipe
	eaters []calculator.EaterType
}

// NewMemoryStorage initialises storage with the default recipe and eater types.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		recipe: calculator.DefaultRecipe(),
		eaters: calculator.DefaultEaterTypes(),
	}
}

// GetRecipe returns the active recipe.
func (s *MemoryStorage) GetRecipe() (calculator.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recipe, nil
}

// SetRecipe validates and stores the recipe.
func (s *MemoryStorage) SetRecipe(recipe calculator.Recipe) error {
	if err := calculator.ValidateRecipe(recipe); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	s.mu.Lock()
	s.recipe = recipe
	s.mu.Unlock()

	return nil
}

// GetEaterTypes returns a defensive copy of the configured eater types, in insertion order.
func (s *MemoryStorage) GetEaterTypes() ([]calculator.EaterType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneEaters(s.eaters), nil
}

// SetEaterTypes validates, normalises, and stores the provided eater types.
// Counts are per calculation and are cleared before storing.
func (s *MemoryStorage) SetEaterTypes(eaters []calculator.EaterType) error {
	normalized, err := normalizeEaterTypes(eaters)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.eaters = normalized
	s.mu.Unlock()

	return nil
}

// Replace swaps recipe and eater types atomically. Nothing is stored when either is invalid.
func (s *MemoryStorage) Replace(recipe calculator.Recipe, eaters []calculator.EaterType) error {
	if err := calculator.ValidateRecipe(recipe); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	normalized, err := normalizeEaterTypes(eaters)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recipe = recipe
	s.eaters = normalized
	s.mu.Unlock()

	return nil
}

// Snapshot returns recipe and eater types read under a single lock.
func (s *MemoryStorage) Snapshot() (calculator.Recipe, []calculator.EaterType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.recipe, cloneEaters(s.eaters), nil
}

func cloneEaters(src []calculator.EaterType) []calculator.EaterType {
	if len(src) == 0 {
		return []calculator.EaterType{}
	}

	out := make([]calculator.EaterType, len(src))
	copy(out, src)
	return out
}

func normalizeEaterTypes(eaters []calculator.EaterType) ([]calculator.EaterType, error) {
	if len(eaters) == 0 || len(eaters) > maxEaterTypes {
		return nil, ErrInvalidEaterTypes
	}

	seen := make(map[string]struct{}, len(eaters))
	out := make([]calculator.EaterType, 0, len(eaters))
	for _, e := range eaters {
		e.Name = strings.TrimSpace(e.Name)
		if err := calculator.ValidateEaterType(e); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidEaterTypes, err)
		}
		if _, dup := seen[e.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidEaterTypes, e.Name)
		}
		seen[e.Name] = struct{}{}
		out = append(out, calculator.EaterType{Name: e.Name, Factor: e.Factor})
	}
	return out, nil
}
