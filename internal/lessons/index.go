package lessons

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the lesson file used when nothing else is configured.
const DefaultPath = "lessons.json"

// Lesson is one entry of a lesson file. Content is either plain text or any
// structured value; structured content is rendered as compact JSON.
type Lesson struct {
	ID      string
	Title   string
	Content any
}

// Summary is the public listing view of a lesson.
type Summary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Index is a read-only lookup over the lessons loaded at startup.
type Index struct {
	byID    map[string]Lesson
	byTitle map[string]Lesson
	order   []string
}

// NewIndex builds an index. A later lesson replaces an earlier one with the
// same id or title.
func NewIndex(lessons []Lesson) *Index {
	idx := &Index{
		byID:    make(map[string]Lesson),
		byTitle: make(map[string]Lesson),
	}
	for _, l := range lessons {
		l.ID = strings.TrimSpace(l.ID)
		l.Title = strings.TrimSpace(l.Title)
		if l.ID != "" {
			if _, seen := idx.byID[l.ID]; !seen {
				idx.order = append(idx.order, l.ID)
			}
			idx.byID[l.ID] = l
		}
		if l.Title != "" {
			idx.byTitle[strings.ToLower(l.Title)] = l
		}
	}
	return idx
}

// Len returns the number of distinct lesson ids.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.order)
}

// Resolve returns the content of the lesson with the given id, falling back
// to a case-insensitive title match. ok is false when neither matches or the
// matching lesson has no usable content.
func (idx *Index) Resolve(id, title string) (string, bool) {
	if idx == nil {
		return "", false
	}
	l, found := idx.byID[strings.TrimSpace(id)]
	if !found {
		l, found = idx.byTitle[strings.ToLower(strings.TrimSpace(title))]
	}
	if !found {
		return "", false
	}
	content := renderContent(l.Content)
	return content, content != ""
}

// List returns id and title for every lesson with an id, in file order.
func (idx *Index) List() []Summary {
	if idx == nil {
		return []Summary{}
	}
	out := make([]Summary, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, Summary{ID: id, Title: idx.byID[id].Title})
	}
	return out
}

func renderContent(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(c)
	default:
		b, err := json.Marshal(c)
		if err != nil {
			return fmt.Sprint(c)
		}
		return string(b)
	}
}

// LoadFile reads a lesson file shaped as {"lessons": [...]}. JSON is used
// unless the extension is .yaml or .yml. A missing file yields an empty index.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewIndex(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read lessons: %w", err)
	}

	var raw struct {
		Lessons []map[string]any `json:"lessons" yaml:"lessons"`
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parse lessons %s: %w", path, err)
	}

	lessons := make([]Lesson, 0, len(raw.Lessons))
	for _, entry := range raw.Lessons {
		lessons = append(lessons, Lesson{
			ID:      scalarString(entry["id"]),
			Title:   scalarString(entry["title"]),
			Content: entry["content"],
		})
	}
	return NewIndex(lessons), nil
}

// scalarString renders ids and titles that may have been written as numbers.
func scalarString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
