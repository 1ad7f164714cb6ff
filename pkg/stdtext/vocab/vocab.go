// Package vocab holds the word frequency table behind the spelling backends
// and the runtime custom dictionary. The table is built from corpus text or
// loaded from a word list file; the custom dictionary is a mutable overlay of
// user-approved words with optional redis persistence.
package vocab

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

var wordRE = regexp.MustCompile(`[\pL\pN]+`)

// Table maps lowercase words to occurrence counts.
type Table struct {
	counts map[string]int
	total  int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{counts: make(map[string]int)}
}

// Add increases the count for a word. Words are lowercased; non-positive
// increments are ignored.
func (t *Table) Add(word string, n int) {
	if n <= 0 {
		return
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	t.counts[word] += n
	t.total += n
}

// AddText tokenizes free text and counts every word once per occurrence.
func (t *Table) AddText(text string) {
	for _, w := range wordRE.FindAllString(strings.ToLower(text), -1) {
		t.counts[w]++
		t.total++
	}
}

// Count returns the occurrence count for a word, zero when absent.
func (t *Table) Count(word string) int {
	return t.counts[strings.ToLower(word)]
}

// Contains reports whether the word is present.
func (t *Table) Contains(word string) bool {
	_, ok := t.counts[strings.ToLower(word)]
	return ok
}

// Total returns the sum of all counts.
func (t *Table) Total() int { return t.total }

// Len returns the number of distinct words.
func (t *Table) Len() int { return len(t.counts) }

// Words returns the distinct words in sorted order.
func (t *Table) Words() []string {
	out := make([]string, 0, len(t.counts))
	for w := range t.counts {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Merge adds every count from other into t.
func (t *Table) Merge(other *Table) {
	for w, n := range other.counts {
		t.counts[w] += n
		t.total += n
	}
}

// Counts returns a copy of the word -> count map.
func (t *Table) Counts() map[string]int {
	out := make(map[string]int, len(t.counts))
	for w, n := range t.counts {
		out[w] = n
	}
	return out
}

// Range calls fn for every word in unspecified order until fn returns false.
func (t *Table) Range(fn func(word string, count int) bool) {
	for w, n := range t.counts {
		if !fn(w, n) {
			return
		}
	}
}

// Load reads a word list file. A line with a word and an integer count is
// taken as that pair; any other line is tokenized and each token counted
// once. Words are lowercased.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read word list: %w", err)
	}
	t := NewTable()
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		switch len(fields) {
		case 0:
		case 1:
			t.Add(fields[0], 1)
		case 2:
			if n, err := strconv.Atoi(fields[1]); err == nil {
				t.Add(fields[0], n)
				continue
			}
			t.AddText(line)
		default:
			t.AddText(line)
		}
	}
	return t, nil
}

// Save writes the table as "word count" lines in sorted word order.
func (t *Table) Save(path string) error {
	var b strings.Builder
	for _, w := range t.Words() {
		fmt.Fprintf(&b, "%s %d\n", w, t.counts[w])
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write word list: %w", err)
	}
	return nil
}

// Set is a concurrency-safe word set used as the custom dictionary overlay.
type Set struct {
	mu    sync.RWMutex
	words map[string]bool
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{words: make(map[string]bool)}
}

// Has reports membership, case-insensitively.
func (s *Set) Has(word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.words[strings.ToLower(word)]
}

// Add inserts a word.
func (s *Set) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	s.mu.Lock()
	s.words[word] = true
	s.mu.Unlock()
}

// Remove deletes a word.
func (s *Set) Remove(word string) {
	s.mu.Lock()
	delete(s.words, strings.ToLower(word))
	s.mu.Unlock()
}

// Replace swaps the whole membership for the given words.
func (s *Set) Replace(words []string) {
	next := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			next[w] = true
		}
	}
	s.mu.Lock()
	s.words = next
	s.mu.Unlock()
}

// Words returns the members in sorted order.
func (s *Set) Words() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Len returns the number of members.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.words)
}

// CustomStore persists the custom dictionary across restarts.
type CustomStore interface {
	Add(ctx context.Context, word string) error
	Remove(ctx context.Context, word string) error
	All(ctx context.Context) ([]string, error)
}

// redisKey is the default redis set key for custom words.
const redisKey = "stdtext:custom_words"

// RedisStore keeps the custom dictionary in a redis set.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore wraps a redis client. An empty key selects the default.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = redisKey
	}
	return &RedisStore{client: client, key: key}
}

// Add inserts a word into the redis set.
func (s *RedisStore) Add(ctx context.Context, word string) error {
	return s.client.SAdd(ctx, s.key, strings.ToLower(word)).Err()
}

// Remove deletes a word from the redis set.
func (s *RedisStore) Remove(ctx context.Context, word string) error {
	return s.client.SRem(ctx, s.key, strings.ToLower(word)).Err()
}

// All returns every word in the redis set.
func (s *RedisStore) All(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, s.key).Result()
}

// MemoryStore is the in-process CustomStore used when no redis address is
// configured.
type MemoryStore struct {
	set *Set
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{set: NewSet()}
}

// Add inserts a word.
func (s *MemoryStore) Add(_ context.Context, word string) error {
	s.set.Add(word)
	return nil
}

// Remove deletes a word.
func (s *MemoryStore) Remove(_ context.Context, word string) error {
	s.set.Remove(word)
	return nil
}

// All returns the stored words in sorted order.
func (s *MemoryStore) All(_ context.Context) ([]string, error) {
	return s.set.Words(), nil
}
