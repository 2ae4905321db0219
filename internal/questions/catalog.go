// Package questions provides the question catalog: the immutable store of
// prompts and reference answers, keyed by (database slug, question id).
package questions

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
)

// Question is one exercise of the catalog.
type Question struct {
	ID              int    `json:"id"`
	Prompt          string `json:"prompt"`
	ReferenceAnswer string `json:"reference_answer"`
}

// DatabaseEntry groups the questions of one practice database.
type DatabaseEntry struct {
	Slug      string     `json:"slug"`
	Questions []Question `json:"questions"`
}

// Key identifies a question across all practice databases.
type Key struct {
	Slug string
	ID   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Slug, k.ID)
}

// ListItem is the learner-facing view of a question, without the answer.
type ListItem struct {
	ID     int    `json:"id"`
	Slug   string `json:"slug"`
	Prompt string `json:"prompt"`
}

var ErrNotFound = errors.New("question not found")

// Catalog is an immutable lookup of questions. Construct it once at startup
// and share it freely; it is safe for concurrent readers.
type Catalog struct {
	questions map[Key]Question
	slugs     []string
}

// Load reads and builds a catalog from a JSON file.
func Load(path string) (*Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []DatabaseEntry
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}

	return New(entries)
}

// New builds a catalog from parsed entries, rejecting duplicate keys.
func New(entries []DatabaseEntry) (*Catalog, error) {
	catalog := &Catalog{questions: make(map[Key]Question)}

	for _, entry := range entries {
		if entry.Slug == "" {
			return nil, errors.New("catalog entry without a database slug")
		}

		for _, question := range entry.Questions {
			key := Key{Slug: entry.Slug, ID: question.ID}
			if _, ok := catalog.questions[key]; ok {
				return nil, fmt.Errorf("duplicate question %s", key)
			}
			catalog.questions[key] = question
		}

		catalog.slugs = append(catalog.slugs, entry.Slug)
	}

	return catalog, nil
}

// Get returns the question for (slug, id), or ErrNotFound.
func (c *Catalog) Get(slug string, id int) (Question, error) {
	question, ok := c.questions[Key{Slug: slug, ID: id}]
	if !ok {
		return Question{}, ErrNotFound
	}

	return question, nil
}

// List returns the learner-facing items of one database, ordered by id.
func (c *Catalog) List(slug string) []ListItem {
	keys := lo.Filter(lo.Keys(c.questions), func(key Key, _ int) bool {
		return key.Slug == slug
	})
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

	return lo.Map(keys, func(key Key, _ int) ListItem {
		return ListItem{
			ID:     key.ID,
			Slug:   key.Slug,
			Prompt: c.questions[key].Prompt,
		}
	})
}

// Slugs returns the database slugs in catalog order.
func (c *Catalog) Slugs() []string {
	return c.slugs
}

// Len returns the total number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}
