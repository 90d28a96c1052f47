package jsonstore

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/storage"
)

// JSON-backed task persistence. The whole collection lives under one key
// as a JSON array; any storage.KV can hold it.

// DefaultKey is the storage slot used when none is configured.
const DefaultKey = "tada_todos_v2"

const schemaURL = "tasks.schema.json"

const tasksSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "done", "created"],
    "properties": {
      "id":      {"type": "string"},
      "text":    {"type": "string"},
      "done":    {"type": "boolean"},
      "created": {"type": "number"}
    }
  }
}`

var schema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(tasksSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile(schemaURL)
}

// Store reads and writes the task collection through a KV.
type Store struct {
	kv     storage.KV
	key    string
	logger *log.Logger
}

// New returns a Store writing under key (DefaultKey when empty).
func New(kv storage.KV, key string, logger *log.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Store{kv: kv, key: key, logger: logger}
}

// Load returns the stored collection. A missing, unreadable or malformed
// value gives an empty collection; Load never fails.
func (s *Store) Load() []model.Task {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("read stored tasks", "key", s.key, "err", err)
		return []model.Task{}
	}
	if !ok {
		return []model.Task{}
	}
	items, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("discarding stored tasks", "key", s.key, "err", err)
		return []model.Task{}
	}
	return items
}

// Save overwrites the stored collection with tasks.
func (s *Store) Save(tasks []model.Task) error {
	b, err := Encode(tasks)
	if err != nil {
		return err
	}
	if err := s.kv.Set(s.key, string(b)); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// Encode serializes the collection. A nil slice encodes as [].
func Encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// Decode parses and validates a serialized collection. JSON null decodes
// to an empty collection.
func Decode(b []byte) ([]model.Task, error) {
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if doc == nil {
		return []model.Task{}, nil
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	var recs []record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	items := make([]model.Task, 0, len(recs))
	for _, r := range recs {
		created, err := millis(r.Created)
		if err != nil {
			return nil, fmt.Errorf("task %s: created: %w", r.ID, err)
		}
		items = append(items, model.Task{ID: r.ID, Text: r.Text, Done: r.Done, Created: created})
	}
	return items, nil
}

// record is the stored shape of a task. created may be any JSON number.
type record struct {
	ID      string      `json:"id"`
	Text    string      `json:"text"`
	Done    bool        `json:"done"`
	Created json.Number `json:"created"`
}

// millis converts a JSON number to whole milliseconds, rounding fractions
// and clamping to the int64 range.
func millis(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	f = math.Round(f)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(f), nil
}
