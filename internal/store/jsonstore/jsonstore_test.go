package jsonstore

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/storage"
)

func newStore(kv storage.KV) *Store {
	return New(kv, "", logging.Discard())
}

func TestLoadMissingKey(t *testing.T) {
	got := newStore(storage.NewMemory()).Load()
	if got == nil || len(got) != 0 {
		t.Fatalf("Load: got %#v, want empty non-nil slice", got)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "{not json"},
		{"empty string", ""},
		{"object", `{"id":"a"}`},
		{"number", "42"},
		{"string", `"tasks"`},
		{"array of numbers", "[1,2,3]"},
		{"wrong field type", `[{"id":"a","text":"x","done":"yes","created":1}]`},
		{"missing field", `[{"id":"a","text":"x","done":false}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemory()
			kv.Set(DefaultKey, tt.raw)
			got := newStore(kv).Load()
			if len(got) != 0 {
				t.Errorf("Load(%q): got %d tasks, want 0", tt.raw, len(got))
			}
		})
	}
}

func TestLoadNull(t *testing.T) {
	kv := storage.NewMemory()
	kv.Set(DefaultKey, "null")
	if got := newStore(kv).Load(); len(got) != 0 {
		t.Errorf("Load(null): got %v", got)
	}
}

type failingKV struct{}

func (failingKV) Get(string) (string, bool, error) { return "", false, errors.New("disk on fire") }
func (failingKV) Set(string, string) error         { return errors.New("quota exceeded") }
func (failingKV) Close() error                     { return nil }

func TestLoadReadError(t *testing.T) {
	s := newStore(failingKV{})
	if got := s.Load(); len(got) != 0 {
		t.Errorf("Load: got %v, want empty", got)
	}
	if err := s.Save([]model.Task{{ID: "a"}}); err == nil {
		t.Error("Save: expected error from failing storage")
	}
}

func TestRoundTrip(t *testing.T) {
	want := []model.Task{
		{ID: "a", Text: "Buy milk", Done: false, Created: 1700000000000},
		{ID: "b", Text: "Walk dog", Done: true, Created: 1700000000001},
		{ID: "c", Text: "ünïcødé ✔", Done: false, Created: 1700000000001},
	}
	kv := storage.NewMemory()
	s := newStore(kv)
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := s.Load()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip:\n got %#v\nwant %#v", got, want)
	}

	// save(load()) is stable
	if err := s.Save(got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if again := s.Load(); !reflect.DeepEqual(again, want) {
		t.Fatalf("second round trip: got %#v", again)
	}
}

func TestDecodeCreatedNumberForms(t *testing.T) {
	raw := `[
	  {"id":"a","text":"exp","done":false,"created":1.7e12},
	  {"id":"b","text":"frac","done":true,"created":1700000000000.6},
	  {"id":"c","text":"int","done":false,"created":2}
	]`
	got, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []model.Task{
		{ID: "a", Text: "exp", Created: 1700000000000},
		{ID: "b", Text: "frac", Done: true, Created: 1700000000001},
		{ID: "c", Text: "int", Created: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v\nwant %#v", got, want)
	}

	kv := storage.NewMemory()
	if err := kv.Set(DefaultKey, raw); err != nil {
		t.Fatal(err)
	}
	if n := len(newStore(kv).Load()); n != 3 {
		t.Errorf("Load kept %d of 3 tasks", n)
	}
}

func TestSaveUsesKey(t *testing.T) {
	kv := storage.NewMemory()
	s := New(kv, "custom", logging.Discard())
	if err := s.Save(nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, ok, _ := kv.Get("custom")
	if !ok || raw != "[]" {
		t.Errorf("stored value: got %q ok=%v, want []", raw, ok)
	}
	if _, ok, _ := kv.Get(DefaultKey); ok {
		t.Error("default key written despite custom key")
	}
}
