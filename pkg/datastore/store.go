// Package datastore provides the keyed repository store owned by a work log:
// independent named repositories, each mapping string keys to JSON-safe values.
//
// A store is exclusively owned by one work log and mutated by a single
// goroutine (the executing workflow), so it carries no internal locking.
package datastore

import (
	"encoding/json"
	"fmt"
)

// Store holds named repositories of key/value data.
//
// Variant behavior: a store created with WithStringWrapping wraps bare string
// values as {"data": <string>} on storage, so every stored entry is a record.
// Research flows use the wrapping variant; data-query flows store strings
// as-is. Which variant a work log carries is decided by its factory.
type Store struct {
	repos       map[string]map[string]any
	wrapStrings bool
}

// Option configures a Store.
type Option func(*Store)

// WithStringWrapping makes the store wrap bare string values into a
// one-field record {"data": <string>} before storage.
func WithStringWrapping() Option {
	return func(s *Store) { s.wrapStrings = true }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{repos: make(map[string]map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefineRepo creates an empty repository if absent. It is idempotent and
// never fails; the return value reports whether the repo was newly created.
func (s *Store) DefineRepo(repoKey string) bool {
	if _, ok := s.repos[repoKey]; ok {
		return false
	}
	s.repos[repoKey] = make(map[string]any)
	return true
}

// StoreToRepo normalizes value and stores it under dataKey, overwriting any
// existing entry. The repository must have been defined.
func (s *Store) StoreToRepo(repoKey, dataKey string, value any) error {
	repo, ok := s.repos[repoKey]
	if !ok {
		return fmt.Errorf("%w: %q", ErrRepoNotFound, repoKey)
	}
	norm, err := normalize(value)
	if err != nil {
		return err
	}
	if str, isString := norm.(string); isString && s.wrapStrings {
		norm = map[string]any{"data": str}
	}
	repo[dataKey] = norm
	return nil
}

// RetrieveAllFromRepo returns a snapshot of one repository's contents.
// Later store mutations are not reflected into a returned snapshot.
func (s *Store) RetrieveAllFromRepo(repoKey string) (map[string]any, error) {
	repo, ok := s.repos[repoKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRepoNotFound, repoKey)
	}
	out := make(map[string]any, len(repo))
	for k, v := range repo {
		out[k] = v
	}
	return out, nil
}

// ClearRepo empties a repository without removing its definition.
func (s *Store) ClearRepo(repoKey string) error {
	if _, ok := s.repos[repoKey]; !ok {
		return fmt.Errorf("%w: %q", ErrRepoNotFound, repoKey)
	}
	s.repos[repoKey] = make(map[string]any)
	return nil
}

// RepoLength returns the number of entries in a repository.
func (s *Store) RepoLength(repoKey string) (int, error) {
	repo, ok := s.repos[repoKey]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrRepoNotFound, repoKey)
	}
	return len(repo), nil
}

// RepoKeys returns the defined repository keys.
func (s *Store) RepoKeys() []string {
	keys := make([]string, 0, len(s.repos))
	for k := range s.repos {
		keys = append(keys, k)
	}
	return keys
}

// ToJSON exports every repository and its contents as a JSON object keyed by
// repository key.
func (s *Store) ToJSON() (string, error) {
	raw, err := json.Marshal(s.repos)
	if err != nil {
		return "", &SerializationError{Op: "export", Err: err}
	}
	return string(raw), nil
}

// FromJSON replaces the entire store state with repositories decoded from
// data. The top level must be a JSON object mapping repo keys to objects;
// anything else fails without touching the current state.
func (s *Store) FromJSON(data string) error {
	var decoded map[string]map[string]any
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		return &SerializationError{
			Op:  "import",
			Err: fmt.Errorf("top level must be an object of repo objects: %w", err),
		}
	}
	// json.Unmarshal accepts the literal null into a map without error.
	if decoded == nil {
		return &SerializationError{
			Op:  "import",
			Err: fmt.Errorf("top level must be an object of repo objects, got null"),
		}
	}
	repos := make(map[string]map[string]any, len(decoded))
	for repoKey, entries := range decoded {
		repo := make(map[string]any, len(entries))
		for k, v := range entries {
			repo[k] = v
		}
		repos[repoKey] = repo
	}
	s.repos = repos
	return nil
}
