package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Catalog locates characters and their chat transcript files under a
// data directory laid out as chats/<character>/<chat>.jsonl.
type Catalog struct {
	root    string // the chats directory
	include []string
	exclude []string
}

// NewCatalog creates a Catalog over dataDir. Include and exclude are
// glob patterns matched against paths relative to the chats directory.
func NewCatalog(dataDir string, include, exclude []string) *Catalog {
	if len(include) == 0 {
		include = []string{"**/*.jsonl"}
	}
	return &Catalog{
		root:    filepath.Join(dataDir, "chats"),
		include: include,
		exclude: exclude,
	}
}

// Characters scans the chats directory and returns all characters with
// their chat files, sorted by ID.
func (c *Catalog) Characters() ([]Character, error) {
	entries, err := os.ReadDir(c.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chats directory: %w", err)
	}

	var chars []Character
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()

		files, err := os.ReadDir(filepath.Join(c.root, id))
		if err != nil {
			return nil, fmt.Errorf("reading character directory %s: %w", id, err)
		}

		var chats []string
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			rel := id + "/" + f.Name()
			if !matchesAny(rel, c.include) || matchesAny(rel, c.exclude) {
				continue
			}
			chats = append(chats, strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())))
		}
		sort.Strings(chats)

		chars = append(chars, Character{ID: id, Name: id, Chats: chats})
	}

	sort.Slice(chars, func(i, j int) bool { return chars[i].ID < chars[j].ID })
	return chars, nil
}

// Character returns one character by ID, or nil when it does not exist.
func (c *Catalog) Character(id string) (*Character, error) {
	chars, err := c.Characters()
	if err != nil {
		return nil, err
	}
	for i := range chars {
		if chars[i].ID == id {
			return &chars[i], nil
		}
	}
	return nil, nil
}

// LoadChat reads the messages of one chat file. Malformed lines are
// skipped rather than failing the whole transcript.
func (c *Catalog) LoadChat(characterID, chatFile string) ([]Message, error) {
	path := filepath.Join(c.root, characterID, chatFile+".jsonl")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chat file %s: %w", path, err)
	}
	defer f.Close()

	var messages []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var m Message
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			continue
		}
		messages = append(messages, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading chat file %s: %w", path, err)
	}
	return messages, nil
}

// matchesAny checks if relPath matches any of the given glob patterns.
// It uses doublestar for ** support.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}

		// Also try matching against just the filename.
		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}
